package repository

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/hanjob/resume-api/internal/database/postgres"
	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/pkg/circuitbreaker"
	apperrors "github.com/hanjob/resume-api/pkg/errors"
	"github.com/hanjob/resume-api/pkg/retry"
)

// PostgresDraftRepository implements DraftRepository on PostgreSQL. Calls go
// through a circuit breaker; reads and idempotent writes are retried.
type PostgresDraftRepository struct {
	client  *postgres.Client
	breaker *gobreaker.CircuitBreaker
	retry   retry.Config
}

// NewPostgresDraftRepository creates a repository backed by client.
func NewPostgresDraftRepository(client *postgres.Client) *PostgresDraftRepository {
	return &PostgresDraftRepository{
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("postgres")),
		retry:   retry.DatabaseConfig(),
	}
}

func (r *PostgresDraftRepository) EnsureDraft(ctx context.Context, draftID string) error {
	return r.write(ctx, "ensureDraft", func() error {
		return r.client.EnsureDraft(ctx, draftID)
	})
}

func (r *PostgresDraftRepository) SaveDraft(ctx context.Context, draftID string, snapshot models.Snapshot) error {
	return r.write(ctx, "saveDraft", func() error {
		return r.client.UpsertDraft(ctx, draftID, snapshot)
	})
}

func (r *PostgresDraftRepository) LoadDraft(ctx context.Context, draftID string) (models.Snapshot, bool, error) {
	snap, err := read(ctx, r, "loadDraft", func() (*models.Snapshot, error) {
		s, err := r.client.GetDraft(ctx, draftID)
		if errors.Is(err, postgres.ErrNoRows) {
			// A missing row is an answer, not a backend failure.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		return models.Snapshot{}, false, err
	}
	if snap == nil {
		return models.Snapshot{}, false, nil
	}
	return *snap, true, nil
}

// CreateSubmission is not retried: a timed-out attempt may have committed.
func (r *PostgresDraftRepository) CreateSubmission(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error) {
	id, err := circuitbreaker.Execute(r.breaker, func() (string, error) {
		return r.client.InsertSubmission(ctx, draftID, snapshot)
	})
	if err != nil {
		return "", wrapUnavailable(err)
	}
	return id, nil
}

func (r *PostgresDraftRepository) AddAttachment(ctx context.Context, draftID string, attachment models.Attachment) error {
	return r.write(ctx, "addAttachment", func() error {
		return r.client.InsertAttachment(ctx, draftID, attachment)
	})
}

func (r *PostgresDraftRepository) GetAttachment(ctx context.Context, draftID, attachmentID string) (models.Attachment, error) {
	a, err := read(ctx, r, "getAttachment", func() (*models.Attachment, error) {
		a, err := r.client.GetAttachment(ctx, draftID, attachmentID)
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &a, nil
	})
	if err != nil {
		return models.Attachment{}, err
	}
	if a == nil {
		return models.Attachment{}, apperrors.NotFoundError("attachment")
	}
	return *a, nil
}

func (r *PostgresDraftRepository) DeleteAttachment(ctx context.Context, draftID, attachmentID string) error {
	return r.write(ctx, "deleteAttachment", func() error {
		return r.client.SoftDeleteAttachment(ctx, draftID, attachmentID)
	})
}

func (r *PostgresDraftRepository) ListAttachments(ctx context.Context, draftID string) ([]models.Attachment, error) {
	return read(ctx, r, "listAttachments", func() ([]models.Attachment, error) {
		return r.client.ListAttachments(ctx, draftID)
	})
}

// Ready fails while the circuit breaker is open so readiness checks take the
// instance out of rotation.
func (r *PostgresDraftRepository) Ready(context.Context) error {
	if state := circuitbreaker.State(r.breaker); state == gobreaker.StateOpen.String() {
		return apperrors.UnavailableError("postgres circuit breaker "+state, nil)
	}
	return nil
}

// read runs a query through the breaker with retries.
func read[T any](ctx context.Context, r *PostgresDraftRepository, operation string, fn func() (T, error)) (T, error) {
	out, err := retry.DoWithResult(ctx, r.retry, operation, func() (T, error) {
		return circuitbreaker.Execute(r.breaker, fn)
	})
	if err != nil {
		var zero T
		return zero, wrapUnavailable(err)
	}
	return out, nil
}

// write runs an idempotent statement through the breaker with retries.
func (r *PostgresDraftRepository) write(ctx context.Context, operation string, fn func() error) error {
	err := retry.Do(ctx, r.retry, operation, func() error {
		_, err := circuitbreaker.Execute(r.breaker, func() (struct{}, error) {
			return struct{}{}, fn()
		})
		return err
	})
	return wrapUnavailable(err)
}

func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if circuitbreaker.IsOpen(err) {
		return apperrors.UnavailableError("postgres", err)
	}
	return err
}

var _ DraftRepository = (*PostgresDraftRepository)(nil)
