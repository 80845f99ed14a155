package draft

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/metrics"
)

const defaultSubmittedMessage = "Resume submitted"

// SubmissionController runs validate -> save -> submit -> reset. Each step
// gates the next; the form is only reset after the remote submission succeeds.
type SubmissionController struct {
	draftID   string
	store     *Store
	saver     Saver
	persister Persister
	validator *Validator
	defaults  models.Snapshot

	onValidated func()

	mu        sync.Mutex
	executing bool
}

// OnValidated registers fn to run once the snapshot passed validation and
// before the draft is saved.
func (s *SubmissionController) OnValidated(fn func()) {
	s.onValidated = fn
}

// NewSubmissionController wires a controller for draftID.
func NewSubmissionController(draftID string, store *Store, saver Saver, persister Persister, validator *Validator) *SubmissionController {
	return &SubmissionController{
		draftID:   draftID,
		store:     store,
		saver:     saver,
		persister: persister,
		validator: validator,
	}
}

// Submit validates, persists and submits the current form.
func (s *SubmissionController) Submit(ctx context.Context) models.SubmitResult {
	s.mu.Lock()
	if s.executing {
		s.mu.Unlock()
		return models.SubmitResult{Err: ErrSubmitInProgress}
	}
	s.executing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.executing = false
		s.mu.Unlock()
	}()

	ctx, span := tracer.Start(ctx, "draft.submit", trace.WithAttributes(
		attribute.String("draft.id", s.draftID),
	))
	defer span.End()

	snapshot := s.store.Snapshot()

	if errs := s.validator.Validate(snapshot); !errs.Valid() {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return models.SubmitResult{Err: ErrValidation, ValidationErrors: errs}
	}
	if s.onValidated != nil {
		s.onValidated()
	}

	saved := s.saver.Save(ctx, snapshot, models.SaveOptions{
		Validate: false,
		Trigger:  models.SaveTriggerSubmit,
	})
	if !saved.Success {
		span.RecordError(saved.Err)
		span.SetStatus(codes.Error, "draft save failed")
		metrics.Submissions.WithLabelValues("save_failed").Inc()
		return models.SubmitResult{Err: fmt.Errorf("failed to save draft before submission: %w", saved.Err)}
	}

	msg, err := s.persister.SubmitDraft(ctx, s.draftID, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		metrics.Submissions.WithLabelValues("error").Inc()
		logger.Warn("Resume submission failed",
			zap.String("draft_id", s.draftID),
			zap.Error(err))
		return models.SubmitResult{Err: fmt.Errorf("failed to submit resume: %w", err)}
	}

	// Attachments stay with the submitted record and are not touched here.
	s.store.Reset(s.defaults)

	// The stored draft is cleared through the saver so it is ordered after
	// any autosave still in flight.
	cleared := s.saver.Save(ctx, s.defaults, models.SaveOptions{
		Validate: false,
		Trigger:  models.SaveTriggerReset,
	})
	if !cleared.Success {
		s.store.MarkUnsaved(snapshot)
		logger.Warn("Failed to clear submitted draft",
			zap.String("draft_id", s.draftID),
			zap.Error(cleared.Err))
	}

	metrics.Submissions.WithLabelValues("success").Inc()
	if msg == "" {
		msg = defaultSubmittedMessage
	}
	return models.SubmitResult{Success: true, Message: msg}
}
