package draft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/models"
)

type countingSaver struct {
	mu    sync.Mutex
	calls []models.Snapshot
	opts  []models.SaveOptions
	fail  bool
	store *Store
}

func (s *countingSaver) Save(_ context.Context, snap models.Snapshot, opts models.SaveOptions) models.SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, snap)
	s.opts = append(s.opts, opts)
	if s.fail {
		return models.SaveResult{Err: errBackend, Snapshot: snap}
	}
	s.store.MarkPersisted(snap)
	return models.SaveResult{Success: true, Snapshot: snap}
}

func (s *countingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *countingSaver) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

const testDelay = 20 * time.Millisecond

func TestAutoSaver_BurstProducesOneSave(t *testing.T) {
	store := NewStore(models.Snapshot{})
	saver := &countingSaver{store: store}
	a := NewAutoSaver(store, saver, testDelay)
	defer a.Close()

	for _, v := range []string{"K", "Ki", "Kim"} {
		require.NoError(t, store.SetField(models.FieldName, v))
	}

	require.Eventually(t, func() bool { return saver.count() == 1 }, time.Second, time.Millisecond)
	time.Sleep(3 * testDelay)
	assert.Equal(t, 1, saver.count())

	saver.mu.Lock()
	defer saver.mu.Unlock()
	assert.Equal(t, "Kim", saver.calls[0].Name)
	assert.False(t, saver.opts[0].Validate)
	assert.Equal(t, models.SaveTriggerAuto, saver.opts[0].Trigger)
}

func TestAutoSaver_NoSaveBeforeDelay(t *testing.T) {
	store := NewStore(models.Snapshot{})
	saver := &countingSaver{store: store}
	a := NewAutoSaver(store, saver, time.Hour)
	defer a.Close()

	require.NoError(t, store.SetField(models.FieldName, "Kim"))

	assert.True(t, a.Pending())
	assert.Equal(t, 0, saver.count())
}

func TestAutoSaver_CloseCancelsPendingTimer(t *testing.T) {
	store := NewStore(models.Snapshot{})
	saver := &countingSaver{store: store}
	a := NewAutoSaver(store, saver, testDelay)

	require.NoError(t, store.SetField(models.FieldName, "Kim"))
	a.Close()

	time.Sleep(3 * testDelay)
	assert.Equal(t, 0, saver.count())
	assert.False(t, a.Pending())

	require.NoError(t, store.SetField(models.FieldName, "Lee"))
	assert.False(t, a.Pending())
}

func TestAutoSaver_SkipsCleanStore(t *testing.T) {
	store := NewStore(models.Snapshot{})
	saver := &countingSaver{store: store}
	a := NewAutoSaver(store, saver, testDelay)
	defer a.Close()

	require.NoError(t, store.SetField(models.FieldName, "Kim"))
	store.MarkPersisted(store.Snapshot())

	time.Sleep(3 * testDelay)
	assert.Equal(t, 0, saver.count())
}

func TestAutoSaver_RetriesAfterFailure(t *testing.T) {
	store := NewStore(models.Snapshot{})
	saver := &countingSaver{store: store, fail: true}
	a := NewAutoSaver(store, saver, testDelay)
	defer a.Close()

	require.NoError(t, store.SetField(models.FieldName, "Kim"))
	require.Eventually(t, func() bool { return saver.count() >= 1 }, time.Second, time.Millisecond)
	assert.True(t, store.Dirty())

	saver.setFail(false)
	require.Eventually(t, func() bool { return !store.Dirty() }, time.Second, time.Millisecond)
}
