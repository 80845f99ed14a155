package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/models"
)

func pendingWaiters(c *SaveCoordinator) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0
	}
	return len(c.pending.waiters)
}

func TestSaveCoordinator_SavesAndClearsDirty(t *testing.T) {
	store := NewStore(models.Snapshot{})
	require.NoError(t, store.SetField(models.FieldName, "Kim"))
	p := newFakePersister()
	c := NewSaveCoordinator("d1", store, p, NewValidator())

	res := c.Save(context.Background(), store.Snapshot(), models.SaveOptions{Trigger: models.SaveTriggerAuto})

	require.True(t, res.Success)
	assert.Equal(t, "Draft saved", res.Message)
	assert.False(t, store.Dirty())
	assert.Len(t, p.saveCalls(), 1)
}

func TestSaveCoordinator_SkipsOutdatedAutosave(t *testing.T) {
	store := NewStore(models.Snapshot{})
	require.NoError(t, store.SetField(models.FieldName, "Kim"))
	read := store.Snapshot()
	store.Reset(models.Snapshot{})
	p := newFakePersister()
	c := NewSaveCoordinator("d1", store, p, NewValidator())

	res := c.Save(context.Background(), read, models.SaveOptions{Trigger: models.SaveTriggerAuto})

	assert.True(t, res.Success)
	assert.Empty(t, p.saveCalls())
	assert.False(t, store.Dirty())
}

func TestSaveCoordinator_ValidationBlocksPersistence(t *testing.T) {
	store := NewStore(models.Snapshot{})
	p := newFakePersister()
	c := NewSaveCoordinator("d1", store, p, NewValidator())

	res := c.Save(context.Background(), store.Snapshot(), models.SaveOptions{Validate: true})

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrValidation)
	assert.Contains(t, res.ValidationErrors, models.FieldName)
	assert.Empty(t, p.saveCalls())
}

func TestSaveCoordinator_FailureKeepsDirty(t *testing.T) {
	store := NewStore(models.Snapshot{})
	require.NoError(t, store.SetField(models.FieldName, "Kim"))
	p := newFakePersister()
	p.saveErr = errBackend
	c := NewSaveCoordinator("d1", store, p, NewValidator())

	res := c.Save(context.Background(), store.Snapshot(), models.SaveOptions{})

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, errBackend)
	assert.True(t, store.Dirty())
}

func TestSaveCoordinator_LatestSnapshotWins(t *testing.T) {
	store := NewStore(models.Snapshot{})
	p := newFakePersister()
	p.gate = make(chan struct{})
	p.started = make(chan models.Snapshot, 4)
	c := NewSaveCoordinator("d1", store, p, NewValidator())
	ctx := context.Background()

	s1 := models.Snapshot{Name: "t1"}
	s2 := models.Snapshot{Name: "t2"}
	s3 := models.Snapshot{Name: "t3"}

	results := make(chan models.SaveResult, 3)
	require.NoError(t, store.SetField(models.FieldName, "t1"))
	go func() { results <- c.Save(ctx, s1, models.SaveOptions{}) }()
	assert.Equal(t, s1, <-p.started)

	r2 := make(chan models.SaveResult, 1)
	go func() { r2 <- c.Save(ctx, s2, models.SaveOptions{}) }()
	require.Eventually(t, func() bool { return pendingWaiters(c) == 1 }, time.Second, time.Millisecond)

	r3 := make(chan models.SaveResult, 1)
	go func() { r3 <- c.Save(ctx, s3, models.SaveOptions{}) }()
	require.Eventually(t, func() bool { return pendingWaiters(c) == 2 }, time.Second, time.Millisecond)

	require.NoError(t, store.SetField(models.FieldName, "t3"))

	// Only one call may run at a time.
	assert.Len(t, p.saveCalls(), 1)

	p.gate <- struct{}{}
	first := <-results
	assert.True(t, first.Success)
	assert.True(t, store.Dirty(), "t1 completing must not clear dirty while t3 is current")

	assert.Equal(t, s3, <-p.started)
	p.gate <- struct{}{}

	res2 := <-r2
	res3 := <-r3
	assert.True(t, res2.Success)
	assert.True(t, res2.Coalesced)
	assert.Equal(t, s3, res2.Snapshot)
	assert.True(t, res3.Success)
	assert.False(t, res3.Coalesced)

	assert.Equal(t, []models.Snapshot{s1, s3}, p.saveCalls())
	assert.False(t, store.Dirty())
	assert.Equal(t, s3, store.LastPersisted())

	require.NoError(t, c.Wait(ctx))
	assert.False(t, c.InFlight())
}

func TestSaveCoordinator_WaitHonorsContext(t *testing.T) {
	store := NewStore(models.Snapshot{})
	p := newFakePersister()
	p.gate = make(chan struct{})
	p.started = make(chan models.Snapshot, 1)
	c := NewSaveCoordinator("d1", store, p, NewValidator())

	go c.Save(context.Background(), models.Snapshot{Name: "x"}, models.SaveOptions{})
	<-p.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)

	close(p.gate)
	require.NoError(t, c.Wait(context.Background()))
}
