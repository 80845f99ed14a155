package draft

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hanjob/resume-api/internal/models"
)

var errBackend = errors.New("backend unavailable")

// fakePersister records every call and keeps the last saved draft. When gate
// is set, SaveDraft blocks until a value is sent on it; submitGate does the
// same for SubmitDraft.
type fakePersister struct {
	mu            sync.Mutex
	saves         []models.Snapshot
	submits       []models.Snapshot
	saveErr       error
	submitErr     error
	gate          chan struct{}
	started       chan models.Snapshot
	submitGate    chan struct{}
	submitStarted chan struct{}
	stored        models.Snapshot
	found       bool
	attachments []models.Attachment
}

func newFakePersister() *fakePersister {
	return &fakePersister{}
}

func (p *fakePersister) SaveDraft(ctx context.Context, draftID string, snap models.Snapshot) (string, error) {
	p.mu.Lock()
	p.saves = append(p.saves, snap)
	gate, started, err := p.gate, p.started, p.saveErr
	p.mu.Unlock()

	if started != nil {
		started <- snap
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.stored, p.found = snap, true
	p.mu.Unlock()
	return "", nil
}

func (p *fakePersister) SubmitDraft(ctx context.Context, _ string, snap models.Snapshot) (string, error) {
	p.mu.Lock()
	p.submits = append(p.submits, snap)
	gate, started, err := p.submitGate, p.submitStarted, p.submitErr
	p.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "", nil
}

func (p *fakePersister) LoadDraft(_ context.Context, _ string) (models.Snapshot, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored, p.found, nil
}

func (p *fakePersister) LoadAttachments(_ context.Context, _ string) ([]models.Attachment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Attachment(nil), p.attachments...), nil
}

func (p *fakePersister) saveCalls() []models.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Snapshot(nil), p.saves...)
}

func (p *fakePersister) storedDraft() models.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored
}

func (p *fakePersister) submitCalls() []models.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Snapshot(nil), p.submits...)
}

// fakeUploader reports the configured progress steps, then either blocks on
// gate or returns immediately.
type fakeUploader struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	steps     []int
	gate      chan struct{}
	started   chan string
	uploadErr error
	deleteErr error
}

func (u *fakeUploader) Upload(ctx context.Context, draftID, fileID string, file models.UploadFile, onProgress func(int)) (models.Attachment, error) {
	u.mu.Lock()
	u.uploads = append(u.uploads, fileID)
	steps, gate, started, err := u.steps, u.gate, u.started, u.uploadErr
	u.mu.Unlock()

	if file.Body != nil {
		_, _ = io.Copy(io.Discard, file.Body)
	}
	for _, pct := range steps {
		onProgress(pct)
	}
	if started != nil {
		started <- fileID
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.Attachment{}, ctx.Err()
		}
	}
	if err != nil {
		return models.Attachment{}, err
	}
	return models.Attachment{ID: fileID, StorageKey: draftID + "/" + fileID}, nil
}

func (u *fakeUploader) Delete(_ context.Context, _, fileID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deletes = append(u.deletes, fileID)
	return u.deleteErr
}

func (u *fakeUploader) uploadCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploads)
}

func (u *fakeUploader) deleteCalls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.deletes...)
}

func validSnapshot() models.Snapshot {
	return models.Snapshot{
		Name:        "Nguyen Van A",
		Email:       "a@example.com",
		Phone:       "010-1234-5678",
		Nationality: "vietnam",
		VisaType:    "e9",
		Skills:      "welding",
	}
}
