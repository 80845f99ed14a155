package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/internal/services"
	"github.com/hanjob/resume-api/pkg/httpclient"
)

func TestDraftPersister_SaveDraft(t *testing.T) {
	repo := new(MockDraftRepository)
	p := services.NewDraftPersister(repo, "", httpclient.NewStandardClient())
	ctx := context.Background()
	snap := models.Snapshot{Name: "Kim"}

	repo.On("SaveDraft", ctx, "draft-1", snap).Return(nil).Once()

	msg, err := p.SaveDraft(ctx, "draft-1", snap)
	require.NoError(t, err)
	assert.Empty(t, msg)
	repo.AssertExpectations(t)
}

func TestDraftPersister_SaveDraft_Error(t *testing.T) {
	repo := new(MockDraftRepository)
	p := services.NewDraftPersister(repo, "", httpclient.NewStandardClient())
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	repo.On("SaveDraft", ctx, "draft-1", models.Snapshot{}).Return(dbErr).Once()

	_, err := p.SaveDraft(ctx, "draft-1", models.Snapshot{})
	assert.ErrorIs(t, err, dbErr)
}

func TestDraftPersister_SubmitDraft_CallsTrigger(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Query().Get("id")
	}))
	defer srv.Close()

	repo := new(MockDraftRepository)
	p := services.NewDraftPersister(repo, srv.URL+"/?id=", httpclient.NewStandardClient())
	ctx := context.Background()
	snap := models.Snapshot{Name: "Kim", Email: "kim@example.com"}

	repo.On("CreateSubmission", ctx, "draft-1", snap).Return("sub-42", nil).Once()

	msg, err := p.SubmitDraft(ctx, "draft-1", snap)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	select {
	case id := <-received:
		assert.Equal(t, "sub-42", id)
	case <-time.After(2 * time.Second):
		t.Fatal("submission trigger was not called")
	}
	repo.AssertExpectations(t)
	// Clearing the draft is left to the session's save path.
	repo.AssertNotCalled(t, "SaveDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftPersister_SubmitDraft_Error(t *testing.T) {
	repo := new(MockDraftRepository)
	p := services.NewDraftPersister(repo, "", httpclient.NewStandardClient())
	ctx := context.Background()

	repo.On("CreateSubmission", ctx, "draft-1", models.Snapshot{}).Return("", errors.New("boom")).Once()

	msg, err := p.SubmitDraft(ctx, "draft-1", models.Snapshot{})
	assert.Error(t, err)
	assert.Empty(t, msg)
}

func TestDraftPersister_Loads(t *testing.T) {
	repo := new(MockDraftRepository)
	p := services.NewDraftPersister(repo, "", httpclient.NewStandardClient())
	ctx := context.Background()
	files := []models.Attachment{{ID: "f1", Name: "cv.pdf"}}

	repo.On("LoadDraft", ctx, "draft-1").Return(models.Snapshot{Name: "Kim"}, true, nil).Once()
	repo.On("ListAttachments", ctx, "draft-1").Return(files, nil).Once()

	snap, found, err := p.LoadDraft(ctx, "draft-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Kim", snap.Name)

	got, err := p.LoadAttachments(ctx, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, files, got)
}
