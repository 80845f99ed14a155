package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
)

// ErrNoRows is returned when a lookup matches nothing.
var ErrNoRows = pgx.ErrNoRows

// EnsureDraft creates an empty draft row when id does not exist yet.
func (c *Client) EnsureDraft(ctx context.Context, draftID string) error {
	start := time.Now()
	_, err := c.db.Exec(ctx,
		`INSERT INTO resume_drafts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		draftID)
	observe(ctx, "ensureDraft", start, err, zap.String("draft_id", draftID))
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// UpsertDraft overwrites every field of the draft.
func (c *Client) UpsertDraft(ctx context.Context, draftID string, s models.Snapshot) error {
	start := time.Now()
	query := `
		INSERT INTO resume_drafts (id, name, email, phone, nationality, visa_type,
			education, experience, skills, languages, introduction, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			nationality = EXCLUDED.nationality,
			visa_type = EXCLUDED.visa_type,
			education = EXCLUDED.education,
			experience = EXCLUDED.experience,
			skills = EXCLUDED.skills,
			languages = EXCLUDED.languages,
			introduction = EXCLUDED.introduction,
			updated_at = NOW()
	`
	_, err := c.db.Exec(ctx, query, append([]any{draftID}, snapshotArgs(s)...)...)
	observe(ctx, "upsertDraft", start, err, zap.String("draft_id", draftID))
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// GetDraft loads a draft. It returns ErrNoRows for unknown ids.
func (c *Client) GetDraft(ctx context.Context, draftID string) (models.Snapshot, error) {
	start := time.Now()
	var s models.Snapshot
	err := c.db.QueryRow(ctx, `
		SELECT name, email, phone, nationality, visa_type,
		       education, experience, skills, languages, introduction
		FROM resume_drafts WHERE id = $1
	`, draftID).Scan(
		&s.Name, &s.Email, &s.Phone, &s.Nationality, &s.VisaType,
		&s.Education, &s.Experience, &s.Skills, &s.Languages, &s.Introduction,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		observe(ctx, "getDraft", start, nil, zap.String("draft_id", draftID), zap.Bool("found", false))
		return models.Snapshot{}, ErrNoRows
	}
	observe(ctx, "getDraft", start, err, zap.String("draft_id", draftID))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to load draft: %w", err)
	}
	return s, nil
}

// InsertSubmission stores a submitted copy of the draft and links the
// draft's live attachments to it. It returns the submission id.
func (c *Client) InsertSubmission(ctx context.Context, draftID string, s models.Snapshot) (string, error) {
	start := time.Now()
	submissionID := uuid.NewString()

	err := pgx.BeginFunc(ctx, c.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO resume_submissions (id, draft_id, name, email, phone, nationality,
				visa_type, education, experience, skills, languages, introduction)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, append([]any{submissionID, draftID}, snapshotArgs(s)...)...)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE resume_attachments SET submission_id = $1
			WHERE draft_id = $2 AND deleted_at IS NULL AND submission_id IS NULL
		`, submissionID, draftID)
		return err
	})

	observe(ctx, "insertSubmission", start, err,
		zap.String("draft_id", draftID),
		zap.String("submission_id", submissionID))
	if err != nil {
		return "", fmt.Errorf("failed to store submission: %w", err)
	}
	return submissionID, nil
}

func snapshotArgs(s models.Snapshot) []any {
	return []any{
		s.Name, s.Email, s.Phone, s.Nationality, s.VisaType,
		s.Education, s.Experience, s.Skills, s.Languages, s.Introduction,
	}
}
