package repository

import (
	"context"

	"github.com/hanjob/resume-api/internal/models"
)

// DraftRepository stores resume drafts, their submissions and attachment
// metadata. Implementations return pkg/errors.ErrNotFound for unknown
// attachments and ErrUnavailable when the backend rejects calls.
type DraftRepository interface {
	// EnsureDraft creates an empty draft when draftID is new.
	EnsureDraft(ctx context.Context, draftID string) error

	// SaveDraft overwrites every field of the draft.
	SaveDraft(ctx context.Context, draftID string, snapshot models.Snapshot) error

	// LoadDraft returns the stored draft and whether it exists.
	LoadDraft(ctx context.Context, draftID string) (models.Snapshot, bool, error)

	// CreateSubmission stores a submitted copy and returns its id.
	CreateSubmission(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error)

	// AddAttachment records attachment metadata.
	AddAttachment(ctx context.Context, draftID string, attachment models.Attachment) error

	// GetAttachment returns a live attachment.
	GetAttachment(ctx context.Context, draftID, attachmentID string) (models.Attachment, error)

	// DeleteAttachment hides an attachment; repeated calls succeed.
	DeleteAttachment(ctx context.Context, draftID, attachmentID string) error

	// ListAttachments returns live attachments in upload order.
	ListAttachments(ctx context.Context, draftID string) ([]models.Attachment, error)
}
