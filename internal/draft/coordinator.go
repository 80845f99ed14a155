package draft

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/metrics"
)

var tracer = otel.Tracer("github.com/hanjob/resume-api/internal/draft")

const defaultSavedMessage = "Draft saved"

// Saver is the serialization point every save trigger goes through.
type Saver interface {
	Save(ctx context.Context, snapshot models.Snapshot, opts models.SaveOptions) models.SaveResult
}

// SaveCoordinator runs at most one persistence call at a time. Requests that
// arrive while a call is in flight collapse into a single pending save that
// always carries the most recently requested snapshot.
type SaveCoordinator struct {
	draftID   string
	store     *Store
	persister Persister
	validator *Validator

	mu       sync.Mutex
	inFlight bool
	idle     chan struct{}
	pending  *pendingSave
}

type pendingSave struct {
	ctx      context.Context
	snapshot models.Snapshot
	trigger  models.SaveTrigger
	waiters  []chan models.SaveResult
}

// NewSaveCoordinator creates a coordinator persisting draftID.
func NewSaveCoordinator(draftID string, store *Store, persister Persister, validator *Validator) *SaveCoordinator {
	return &SaveCoordinator{
		draftID:   draftID,
		store:     store,
		persister: persister,
		validator: validator,
	}
}

// Save persists snapshot, or folds it into the pending save when another
// call is in flight. Errors are reported in the result.
func (c *SaveCoordinator) Save(ctx context.Context, snapshot models.Snapshot, opts models.SaveOptions) models.SaveResult {
	if opts.Trigger == "" {
		opts.Trigger = models.SaveTriggerManual
	}

	if opts.Validate {
		if errs := c.validator.Validate(snapshot); !errs.Valid() {
			return models.SaveResult{Err: ErrValidation, ValidationErrors: errs, Snapshot: snapshot}
		}
	}

	c.mu.Lock()
	if c.inFlight {
		if c.pending == nil {
			c.pending = &pendingSave{}
		} else {
			// The previous pending snapshot will never be written on its own.
			metrics.DraftSavesCoalesced.Inc()
		}
		c.pending.ctx = context.WithoutCancel(ctx)
		c.pending.snapshot = snapshot
		c.pending.trigger = opts.Trigger
		done := make(chan models.SaveResult, 1)
		c.pending.waiters = append(c.pending.waiters, done)
		c.mu.Unlock()

		select {
		case res := <-done:
			res.Coalesced = res.Snapshot != snapshot
			return res
		case <-ctx.Done():
			return models.SaveResult{Err: ctx.Err(), Snapshot: snapshot}
		}
	}
	c.inFlight = true
	c.idle = make(chan struct{})
	c.mu.Unlock()

	res := c.persist(ctx, snapshot, opts.Trigger)
	c.release()
	return res
}

// Wait blocks until no persistence call is in flight or pending.
func (c *SaveCoordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	if !c.inFlight {
		c.mu.Unlock()
		return nil
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight reports whether a persistence call is running.
func (c *SaveCoordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// release hands the slot to the pending save, if any, or marks the
// coordinator idle.
func (c *SaveCoordinator) release() {
	c.mu.Lock()
	next := c.pending
	c.pending = nil
	if next == nil {
		c.inFlight = false
		close(c.idle)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	go c.drain(next)
}

func (c *SaveCoordinator) drain(p *pendingSave) {
	res := c.persist(p.ctx, p.snapshot, p.trigger)
	for _, w := range p.waiters {
		w <- res
	}
	c.release()
}

func (c *SaveCoordinator) persist(ctx context.Context, snapshot models.Snapshot, trigger models.SaveTrigger) models.SaveResult {
	ctx, span := tracer.Start(ctx, "draft.save", trace.WithAttributes(
		attribute.String("draft.id", c.draftID),
		attribute.String("save.trigger", string(trigger)),
	))
	defer span.End()

	// An autosave read before a reset or a newer edit must not overwrite
	// what replaced it; whoever changed the store schedules its own save.
	if trigger == models.SaveTriggerAuto && snapshot != c.store.Snapshot() {
		metrics.DraftSaves.WithLabelValues(string(trigger), "skipped").Inc()
		return models.SaveResult{Success: true, Message: defaultSavedMessage, Snapshot: snapshot}
	}

	msg, err := c.persister.SaveDraft(ctx, c.draftID, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		metrics.DraftSaves.WithLabelValues(string(trigger), "error").Inc()
		return models.SaveResult{Err: err, Snapshot: snapshot}
	}

	if !c.store.MarkPersisted(snapshot) {
		metrics.StaleSaveCompletions.Inc()
		logger.Debug("Save completed for an outdated snapshot, keeping draft dirty",
			zap.String("draft_id", c.draftID),
			zap.String("trigger", string(trigger)))
	}

	metrics.DraftSaves.WithLabelValues(string(trigger), "success").Inc()
	if msg == "" {
		msg = defaultSavedMessage
	}
	return models.SaveResult{Success: true, Message: msg, Snapshot: snapshot}
}
