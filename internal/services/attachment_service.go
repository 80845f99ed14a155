package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/internal/repository"
	apperrors "github.com/hanjob/resume-api/pkg/errors"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/retry"
	"github.com/hanjob/resume-api/pkg/slug"
	"github.com/hanjob/resume-api/pkg/storage"
)

// AttachmentService moves attachment bytes into the object store and keeps
// their metadata in the repository.
type AttachmentService struct {
	repo  repository.DraftRepository
	store storage.ObjectStore
	retry retry.Config
	now   func() time.Time
}

// NewAttachmentService creates an attachment service.
func NewAttachmentService(repo repository.DraftRepository, store storage.ObjectStore) *AttachmentService {
	return &AttachmentService{
		repo:  repo,
		store: store,
		retry: retry.StorageConfig(),
		now:   time.Now,
	}
}

// Upload streams file into the store and records it. The stored object is
// removed again when the metadata cannot be written.
func (s *AttachmentService) Upload(ctx context.Context, draftID, fileID string, file models.UploadFile, onProgress func(int)) (models.Attachment, error) {
	key := slug.ObjectKey(draftID, fileID, file.Name)

	contentType, err := s.store.Put(ctx, key, file.Body, file.Size, file.ContentType, onProgress)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to store %q: %w", file.Name, err)
	}

	att := models.Attachment{
		ID:          fileID,
		Name:        file.Name,
		Size:        file.Size,
		ContentType: contentType,
		Status:      models.AttachmentDone,
		Progress:    100,
		StorageKey:  key,
		CreatedAt:   s.now(),
	}

	if err := s.repo.AddAttachment(ctx, draftID, att); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.Error("Failed to remove orphaned attachment object",
				zap.String("draft_id", draftID),
				zap.String("key", key),
				zap.Error(delErr))
		}
		return models.Attachment{}, fmt.Errorf("failed to record %q: %w", file.Name, err)
	}

	return att, nil
}

// Delete removes the attachment bytes and hides its metadata. Unknown ids
// succeed.
func (s *AttachmentService) Delete(ctx context.Context, draftID, fileID string) error {
	att, err := s.repo.GetAttachment(ctx, draftID, fileID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = retry.Do(ctx, s.retry, "storage.deleteAttachment", func() error {
		return s.store.Delete(ctx, att.StorageKey)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", att.Name, err)
	}

	return s.repo.DeleteAttachment(ctx, draftID, fileID)
}
