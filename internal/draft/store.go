package draft

import (
	"sync"

	"github.com/hanjob/resume-api/internal/models"
)

// Store holds the current form values and the dirty flag.
type Store struct {
	mu        sync.RWMutex
	current   models.Snapshot
	persisted models.Snapshot
	dirty     bool
	observers []func()
}

// NewStore creates a clean store holding initial.
func NewStore(initial models.Snapshot) *Store {
	return &Store{
		current:   initial,
		persisted: initial,
	}
}

// OnChange registers fn to run after every field edit. Observers run outside
// the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetField updates one field and marks the store dirty.
func (s *Store) SetField(f models.Field, value string) error {
	s.mu.Lock()
	next, err := s.current.With(f, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	s.dirty = true
	observers := append([]func(){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
	return nil
}

// Snapshot returns a copy of the current values.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Dirty reports whether the current values have not been persisted.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Reset overwrites every field with defaults and clears the dirty flag.
func (s *Store) Reset(defaults models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = defaults
	s.persisted = defaults
	s.dirty = false
}

// MarkPersisted records that snapshot reached storage. The dirty flag is
// cleared only when snapshot still equals the current values; it returns
// false for a stale completion.
func (s *Store) MarkPersisted(snapshot models.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = snapshot
	if snapshot != s.current {
		s.dirty = true
		return false
	}
	s.dirty = false
	return true
}

// MarkUnsaved records that storage still holds stored. The dirty flag is
// recomputed and change observers run when the store became dirty, so the
// autosaver retries.
func (s *Store) MarkUnsaved(stored models.Snapshot) {
	s.mu.Lock()
	s.persisted = stored
	s.dirty = stored != s.current
	var observers []func()
	if s.dirty {
		observers = append(observers, s.observers...)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// LastPersisted returns the last snapshot known to be stored.
func (s *Store) LastPersisted() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persisted
}
