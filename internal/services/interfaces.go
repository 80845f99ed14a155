package services

import (
	"context"

	"github.com/hanjob/resume-api/internal/draft"
)

// DraftSessionServiceInterface manages the lifetime of draft editing sessions.
type DraftSessionServiceInterface interface {
	StartSession(ctx context.Context) (*draft.Session, string, error)
	GetSession(ctx context.Context, draftID string) (*draft.Session, error)
	EndSession(ctx context.Context, draftID string) error
}

// Ensure services implement their interfaces
var _ DraftSessionServiceInterface = (*DraftSessionService)(nil)
var _ draft.Persister = (*DraftPersister)(nil)
var _ draft.Uploader = (*AttachmentService)(nil)
