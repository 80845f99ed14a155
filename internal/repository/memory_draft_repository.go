package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hanjob/resume-api/internal/models"
	apperrors "github.com/hanjob/resume-api/pkg/errors"
)

// MemoryDraftRepository is an in-memory DraftRepository used in offline mode
// and tests.
type MemoryDraftRepository struct {
	mu          sync.RWMutex
	drafts      map[string]models.Snapshot
	submissions map[string][]Submission
	attachments map[string][]models.Attachment
}

// Submission is a stored submitted copy of a draft.
type Submission struct {
	ID            string
	Snapshot      models.Snapshot
	AttachmentIDs []string
}

// NewMemoryDraftRepository constructs an empty repository.
func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{
		drafts:      make(map[string]models.Snapshot),
		submissions: make(map[string][]Submission),
		attachments: make(map[string][]models.Attachment),
	}
}

func (r *MemoryDraftRepository) EnsureDraft(ctx context.Context, draftID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[draftID]; !ok {
		r.drafts[draftID] = models.Snapshot{}
	}
	return nil
}

func (r *MemoryDraftRepository) SaveDraft(ctx context.Context, draftID string, snapshot models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[draftID] = snapshot
	return nil
}

func (r *MemoryDraftRepository) LoadDraft(ctx context.Context, draftID string) (models.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.drafts[draftID]
	return s, ok, nil
}

func (r *MemoryDraftRepository) CreateSubmission(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub := Submission{ID: uuid.NewString(), Snapshot: snapshot}
	for _, a := range r.attachments[draftID] {
		sub.AttachmentIDs = append(sub.AttachmentIDs, a.ID)
	}
	r.submissions[draftID] = append(r.submissions[draftID], sub)
	return sub.ID, nil
}

func (r *MemoryDraftRepository) AddAttachment(ctx context.Context, draftID string, attachment models.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.Status = models.AttachmentDone
	attachment.Progress = 100
	r.attachments[draftID] = append(r.attachments[draftID], attachment)
	return nil
}

func (r *MemoryDraftRepository) GetAttachment(ctx context.Context, draftID, attachmentID string) (models.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return models.Attachment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.attachments[draftID] {
		if a.ID == attachmentID {
			return a, nil
		}
	}
	return models.Attachment{}, apperrors.NotFoundError("attachment")
}

func (r *MemoryDraftRepository) DeleteAttachment(ctx context.Context, draftID, attachmentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.attachments[draftID]
	for i, a := range list {
		if a.ID == attachmentID {
			r.attachments[draftID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryDraftRepository) ListAttachments(ctx context.Context, draftID string) ([]models.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Attachment{}, r.attachments[draftID]...), nil
}

// Submissions returns what was submitted for draftID.
func (r *MemoryDraftRepository) Submissions(draftID string) []Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Submission(nil), r.submissions[draftID]...)
}

var _ DraftRepository = (*MemoryDraftRepository)(nil)
