package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/models"
)

func TestStore_SetFieldMarksDirty(t *testing.T) {
	s := NewStore(models.Snapshot{})
	assert.False(t, s.Dirty())

	require.NoError(t, s.SetField(models.FieldName, "Kim"))

	assert.True(t, s.Dirty())
	assert.Equal(t, "Kim", s.Snapshot().Name)
}

func TestStore_SetFieldUnknown(t *testing.T) {
	s := NewStore(models.Snapshot{})

	err := s.SetField(models.Field("salary"), "1")

	assert.ErrorIs(t, err, models.ErrUnknownField)
	assert.False(t, s.Dirty())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore(models.Snapshot{Name: "Kim"})

	snap := s.Snapshot()
	snap.Name = "Lee"

	assert.Equal(t, "Kim", s.Snapshot().Name)
}

func TestStore_MarkPersisted(t *testing.T) {
	s := NewStore(models.Snapshot{})
	require.NoError(t, s.SetField(models.FieldName, "Kim"))
	saved := s.Snapshot()

	assert.True(t, s.MarkPersisted(saved))
	assert.False(t, s.Dirty())
	assert.Equal(t, saved, s.LastPersisted())
}

func TestStore_MarkPersistedStale(t *testing.T) {
	s := NewStore(models.Snapshot{})
	require.NoError(t, s.SetField(models.FieldName, "Kim"))
	saved := s.Snapshot()
	require.NoError(t, s.SetField(models.FieldName, "Kim Minsu"))

	assert.False(t, s.MarkPersisted(saved))
	assert.True(t, s.Dirty())
}

func TestStore_StaleCompletionAfterReset(t *testing.T) {
	s := NewStore(models.Snapshot{})
	require.NoError(t, s.SetField(models.FieldName, "Kim"))
	saved := s.Snapshot()
	s.Reset(models.Snapshot{})

	s.MarkPersisted(saved)

	assert.True(t, s.Dirty(), "dirty must reflect that current differs from what was stored last")
}

func TestStore_Reset(t *testing.T) {
	s := NewStore(validSnapshot())
	require.NoError(t, s.SetField(models.FieldSkills, "painting"))

	s.Reset(models.Snapshot{})

	assert.True(t, s.Snapshot().IsZero())
	assert.False(t, s.Dirty())
}

func TestStore_MarkUnsaved(t *testing.T) {
	s := NewStore(models.Snapshot{Name: "Kim"})
	calls := 0
	s.OnChange(func() { calls++ })
	s.Reset(models.Snapshot{})

	s.MarkUnsaved(models.Snapshot{Name: "Kim"})

	assert.True(t, s.Dirty())
	assert.Equal(t, models.Snapshot{Name: "Kim"}, s.LastPersisted())
	assert.Equal(t, 1, calls)

	s.MarkUnsaved(models.Snapshot{})
	assert.False(t, s.Dirty())
	assert.Equal(t, 1, calls)
}

func TestStore_OnChange(t *testing.T) {
	s := NewStore(models.Snapshot{})
	calls := 0
	s.OnChange(func() {
		calls++
		// Observers run outside the lock and may read the store.
		_ = s.Snapshot()
	})

	require.NoError(t, s.SetField(models.FieldName, "a"))
	require.NoError(t, s.SetField(models.FieldName, "ab"))
	_ = s.SetField(models.Field("bogus"), "x")

	assert.Equal(t, 2, calls)
}
