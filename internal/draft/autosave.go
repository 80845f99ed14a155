package draft

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/pkg/logger"
)

// DefaultAutosaveDelay is the quiet period after the last edit before an
// autosave is attempted.
const DefaultAutosaveDelay = 2 * time.Second

// AutoSaver is a trailing-edge debounce in front of a Saver. Only the last
// edit of a burst schedules a save.
type AutoSaver struct {
	store *Store
	saver Saver
	delay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	closed     bool
}

// NewAutoSaver creates an AutoSaver and subscribes it to store edits.
func NewAutoSaver(store *Store, saver Saver, delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &AutoSaver{
		store:  store,
		saver:  saver,
		delay:  delay,
		ctx:    ctx,
		cancel: cancel,
	}
	store.OnChange(a.Touch)
	return a
}

// Touch restarts the debounce timer.
func (a *AutoSaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.generation++
	gen := a.generation
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Pending reports whether a timer is armed.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// Close cancels any pending timer. No autosave starts after Close returns.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.cancel()
}

// rearm schedules a retry unless a newer edit already did.
func (a *AutoSaver) rearm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.timer != nil {
		return
	}
	a.generation++
	gen := a.generation
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	// A timer that lost the race with Stop, or a newer edit, is ignored.
	if a.closed || gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if !a.store.Dirty() {
		return
	}

	res := a.saver.Save(a.ctx, a.store.Snapshot(), models.SaveOptions{
		Validate: false,
		Trigger:  models.SaveTriggerAuto,
	})
	if !res.Success {
		logger.Warn("Autosave failed, retrying after next quiet period", zap.Error(res.Err))
		a.rearm()
		return
	}
	logger.Debug("Autosave completed", zap.Bool("coalesced", res.Coalesced))
}
