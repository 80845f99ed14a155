package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
)

const attachmentColumns = `id, name, size, content_type, storage_key, created_at`

// InsertAttachment records a stored attachment.
func (c *Client) InsertAttachment(ctx context.Context, draftID string, a models.Attachment) error {
	start := time.Now()
	_, err := c.db.Exec(ctx, `
		INSERT INTO resume_attachments (id, draft_id, name, size, content_type, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, draftID, a.Name, a.Size, a.ContentType, a.StorageKey, a.CreatedAt)
	observe(ctx, "insertAttachment", start, err,
		zap.String("draft_id", draftID),
		zap.String("attachment_id", a.ID))
	if err != nil {
		return fmt.Errorf("failed to record attachment: %w", err)
	}
	return nil
}

// GetAttachment loads a live attachment. It returns ErrNoRows when id is
// unknown or already deleted.
func (c *Client) GetAttachment(ctx context.Context, draftID, id string) (models.Attachment, error) {
	start := time.Now()
	row := c.db.QueryRow(ctx, `
		SELECT `+attachmentColumns+`
		FROM resume_attachments
		WHERE id = $1 AND draft_id = $2 AND deleted_at IS NULL
	`, id, draftID)

	a, err := scanAttachment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		observe(ctx, "getAttachment", start, nil, zap.String("attachment_id", id), zap.Bool("found", false))
		return models.Attachment{}, ErrNoRows
	}
	observe(ctx, "getAttachment", start, err, zap.String("attachment_id", id))
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to load attachment: %w", err)
	}
	return a, nil
}

// SoftDeleteAttachment hides an attachment. Deleting twice is not an error.
func (c *Client) SoftDeleteAttachment(ctx context.Context, draftID, id string) error {
	start := time.Now()
	_, err := c.db.Exec(ctx, `
		UPDATE resume_attachments SET deleted_at = NOW()
		WHERE id = $1 AND draft_id = $2 AND deleted_at IS NULL
	`, id, draftID)
	observe(ctx, "deleteAttachment", start, err, zap.String("attachment_id", id))
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// ListAttachments returns the live attachments of a draft, oldest first.
func (c *Client) ListAttachments(ctx context.Context, draftID string) ([]models.Attachment, error) {
	start := time.Now()
	rows, err := c.db.Query(ctx, `
		SELECT `+attachmentColumns+`
		FROM resume_attachments
		WHERE draft_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, id
	`, draftID)
	if err != nil {
		observe(ctx, "listAttachments", start, err, zap.String("draft_id", draftID))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	out := []models.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			observe(ctx, "listAttachments", start, err, zap.String("draft_id", draftID))
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		out = append(out, a)
	}
	err = rows.Err()
	observe(ctx, "listAttachments", start, err,
		zap.String("draft_id", draftID),
		zap.Int("count", len(out)))
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return out, nil
}

func scanAttachment(row pgx.Row) (models.Attachment, error) {
	var a models.Attachment
	err := row.Scan(&a.ID, &a.Name, &a.Size, &a.ContentType, &a.StorageKey, &a.CreatedAt)
	if err != nil {
		return models.Attachment{}, err
	}
	a.Status = models.AttachmentDone
	a.Progress = 100
	return a, nil
}
