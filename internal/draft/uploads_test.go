package draft

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/models"
)

func pdf(name string, size int64) models.UploadFile {
	return models.UploadFile{
		Name:        name,
		Size:        size,
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF-1.4"),
	}
}

func TestCheckUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr error
	}{
		{"pdf", "cv.pdf", 1024, nil},
		{"doc upper case", "CV.DOC", 1024, nil},
		{"docx", "cv.docx", 1024, nil},
		{"exactly at limit", "cv.pdf", MaxAttachmentSize, nil},
		{"one byte over", "cv.pdf", MaxAttachmentSize + 1, ErrFileTooLarge},
		{"image", "photo.png", 1024, ErrUnsupportedFileType},
		{"no extension", "resume", 1024, ErrUnsupportedFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpload(tt.file, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUploadManager_Upload(t *testing.T) {
	up := &fakeUploader{steps: []int{10, 60, 100}}
	m := NewUploadManager("d1", up)

	res := m.Upload(context.Background(), pdf("cv.pdf", 2048))

	require.True(t, res.Success, "%v", res.Err)
	require.NotNil(t, res.Attachment)
	assert.Equal(t, models.AttachmentDone, res.Attachment.Status)
	assert.Equal(t, 100, res.Attachment.Progress)
	assert.Equal(t, "d1/"+res.Attachment.ID, res.Attachment.StorageKey)

	atts := m.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "cv.pdf", atts[0].Name)
	assert.Empty(t, m.InFlight())
}

func TestUploadManager_OversizedFileNeverReachesNetwork(t *testing.T) {
	up := &fakeUploader{}
	m := NewUploadManager("d1", up)

	res := m.Upload(context.Background(), pdf("big.pdf", 11*1024*1024))

	assert.False(t, res.Success)
	assert.True(t, res.Precondition)
	assert.ErrorIs(t, res.Err, ErrFileTooLarge)
	assert.Equal(t, 0, up.uploadCalls())
	assert.Empty(t, m.Attachments())
}

func TestUploadManager_UnsupportedTypeNeverReachesNetwork(t *testing.T) {
	up := &fakeUploader{}
	m := NewUploadManager("d1", up)

	res := m.Upload(context.Background(), pdf("cv.exe", 10))

	assert.True(t, res.Precondition)
	assert.ErrorIs(t, res.Err, ErrUnsupportedFileType)
	assert.Equal(t, 0, up.uploadCalls())
}

func TestUploadManager_FailedUploadIsNotListed(t *testing.T) {
	up := &fakeUploader{uploadErr: errBackend}
	m := NewUploadManager("d1", up)

	res := m.Upload(context.Background(), pdf("cv.pdf", 10))

	assert.False(t, res.Success)
	assert.False(t, res.Precondition)
	assert.ErrorIs(t, res.Err, errBackend)
	assert.Empty(t, m.Attachments())
	assert.Empty(t, m.InFlight())
}

func TestUploadManager_DeleteUnknownIsNoop(t *testing.T) {
	up := &fakeUploader{}
	m := NewUploadManager("d1", up)
	m.Seed([]models.Attachment{{ID: "a1", Name: "cv.pdf", Size: 10}})

	res := m.Delete(context.Background(), "missing")

	assert.True(t, res.Success)
	assert.Empty(t, up.deleteCalls())
	assert.Len(t, m.Attachments(), 1)
}

func TestUploadManager_DeleteIsIdempotent(t *testing.T) {
	up := &fakeUploader{}
	m := NewUploadManager("d1", up)
	m.Seed([]models.Attachment{{ID: "a1", Name: "cv.pdf", Size: 10}})

	first := m.Delete(context.Background(), "a1")
	second := m.Delete(context.Background(), "a1")

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, []string{"a1"}, up.deleteCalls())
	assert.Empty(t, m.Attachments())
}

func TestUploadManager_DeleteFailureKeepsFile(t *testing.T) {
	up := &fakeUploader{deleteErr: errBackend}
	m := NewUploadManager("d1", up)
	m.Seed([]models.Attachment{{ID: "a1", Name: "cv.pdf", Size: 10}})

	res := m.Delete(context.Background(), "a1")

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, errBackend)
	assert.Len(t, m.Attachments(), 1)
}

func TestUploadManager_DeleteMidFlightCancels(t *testing.T) {
	up := &fakeUploader{
		steps:   []int{30},
		gate:    make(chan struct{}),
		started: make(chan string, 1),
	}
	m := NewUploadManager("d1", up)

	done := make(chan models.UploadResult, 1)
	go func() { done <- m.Upload(context.Background(), pdf("cv.pdf", 10)) }()
	id := <-up.started

	inFlight := m.InFlight()
	require.Len(t, inFlight, 1)
	assert.Equal(t, models.AttachmentUploading, inFlight[0].Status)
	assert.Equal(t, 30, m.Progress()[id])

	del := m.Delete(context.Background(), id)
	assert.True(t, del.Success)

	res := <-done
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrUploadCanceled)
	assert.Empty(t, m.Attachments())
	assert.Empty(t, m.InFlight())
	assert.Empty(t, m.Progress())
}

func TestUploadManager_ProgressIsMonotonicAndClamped(t *testing.T) {
	up := &fakeUploader{
		steps:   []int{-5, 40, 20, 150},
		gate:    make(chan struct{}),
		started: make(chan string, 1),
	}
	m := NewUploadManager("d1", up)

	done := make(chan models.UploadResult, 1)
	go func() { done <- m.Upload(context.Background(), pdf("cv.pdf", 10)) }()
	id := <-up.started

	assert.Equal(t, 100, m.Progress()[id])

	close(up.gate)
	require.True(t, (<-done).Success)
}

func TestUploadManager_ConcurrentUploads(t *testing.T) {
	up := &fakeUploader{steps: []int{50, 100}}
	m := NewUploadManager("d1", up)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := m.Upload(context.Background(), pdf(fmt.Sprintf("cv-%d.pdf", i), 10))
			assert.True(t, res.Success)
		}(i)
	}
	wg.Wait()

	atts := m.Attachments()
	assert.Len(t, atts, n)
	ids := map[string]bool{}
	for _, a := range atts {
		ids[a.ID] = true
	}
	assert.Len(t, ids, n)
}

func TestUploadManager_CloseCancelsInFlight(t *testing.T) {
	up := &fakeUploader{
		gate:    make(chan struct{}),
		started: make(chan string, 1),
	}
	m := NewUploadManager("d1", up)

	done := make(chan models.UploadResult, 1)
	go func() { done <- m.Upload(context.Background(), pdf("cv.pdf", 10)) }()
	<-up.started

	m.Close()

	select {
	case res := <-done:
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("upload did not stop after Close")
	}
}
