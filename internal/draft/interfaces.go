package draft

import (
	"context"

	"github.com/hanjob/resume-api/internal/models"
)

// Persister stores drafts and submissions. Every call is a full-snapshot
// overwrite, so retrying a call is always safe.
type Persister interface {
	SaveDraft(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error)
	SubmitDraft(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error)
	LoadDraft(ctx context.Context, draftID string) (models.Snapshot, bool, error)
	LoadAttachments(ctx context.Context, draftID string) ([]models.Attachment, error)
}

// Uploader moves attachment bytes to durable storage. onProgress receives
// percentages in [0,100].
type Uploader interface {
	Upload(ctx context.Context, draftID, fileID string, file models.UploadFile, onProgress func(pct int)) (models.Attachment, error)
	Delete(ctx context.Context, draftID, fileID string) error
}
