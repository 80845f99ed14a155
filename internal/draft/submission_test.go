package draft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/models"
)

func newSubmitFixture(initial models.Snapshot) (*Store, *fakePersister, *SubmissionController) {
	store := NewStore(initial)
	p := newFakePersister()
	v := NewValidator()
	c := NewSaveCoordinator("d1", store, p, v)
	return store, p, NewSubmissionController("d1", store, c, p, v)
}

func TestSubmissionController_InvalidFormMakesNoCalls(t *testing.T) {
	snap := validSnapshot()
	snap.Name = ""
	_, p, sc := newSubmitFixture(snap)

	res := sc.Submit(context.Background())

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrValidation)
	assert.Equal(t, "Name is required", res.ValidationErrors[models.FieldName])
	assert.Empty(t, p.saveCalls())
	assert.Empty(t, p.submitCalls())
}

func TestSubmissionController_SuccessResetsFields(t *testing.T) {
	store, p, sc := newSubmitFixture(validSnapshot())
	validated := false
	sc.OnValidated(func() { validated = true })

	res := sc.Submit(context.Background())

	require.True(t, res.Success, "%v", res.Err)
	assert.Equal(t, "Resume submitted", res.Message)
	assert.True(t, validated)
	assert.Equal(t, []models.Snapshot{validSnapshot(), {}}, p.saveCalls())
	assert.Equal(t, []models.Snapshot{validSnapshot()}, p.submitCalls())
	assert.True(t, store.Snapshot().IsZero())
	assert.False(t, store.Dirty())
	assert.True(t, p.storedDraft().IsZero())
}

func TestSubmissionController_ClearFailureLeavesDraftDirty(t *testing.T) {
	store, p, sc := newSubmitFixture(validSnapshot())
	p.gate = make(chan struct{}, 1)
	p.started = make(chan models.Snapshot, 2)
	retried := make(chan struct{}, 1)
	store.OnChange(func() { retried <- struct{}{} })

	done := make(chan models.SubmitResult, 1)
	go func() { done <- sc.Submit(context.Background()) }()

	// The first save already read a nil error; the clear after submission fails.
	<-p.started
	p.mu.Lock()
	p.saveErr = errBackend
	p.mu.Unlock()
	p.gate <- struct{}{}
	<-p.started
	p.gate <- struct{}{}

	res := <-done
	require.True(t, res.Success, "%v", res.Err)
	assert.True(t, store.Snapshot().IsZero())
	assert.True(t, store.Dirty(), "storage still holds the submitted draft")
	assert.Equal(t, validSnapshot(), store.LastPersisted())
	assert.Equal(t, validSnapshot(), p.storedDraft())
	select {
	case <-retried:
	default:
		t.Fatal("change observers were not told to retry the save")
	}
}

func TestSubmissionController_SaveFailureSkipsSubmit(t *testing.T) {
	store, p, sc := newSubmitFixture(validSnapshot())
	p.saveErr = errBackend

	res := sc.Submit(context.Background())

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, errBackend)
	assert.Empty(t, p.submitCalls())
	assert.Equal(t, validSnapshot(), store.Snapshot())
}

func TestSubmissionController_SubmitFailureKeepsFields(t *testing.T) {
	store, p, sc := newSubmitFixture(validSnapshot())
	p.submitErr = errBackend

	res := sc.Submit(context.Background())

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, errBackend)
	assert.Equal(t, validSnapshot(), store.Snapshot())
}

func TestSubmissionController_RejectsConcurrentSubmit(t *testing.T) {
	_, p, sc := newSubmitFixture(validSnapshot())
	p.gate = make(chan struct{})
	p.started = make(chan models.Snapshot, 2)

	done := make(chan models.SubmitResult, 1)
	go func() { done <- sc.Submit(context.Background()) }()
	<-p.started

	second := sc.Submit(context.Background())
	assert.ErrorIs(t, second.Err, ErrSubmitInProgress)

	close(p.gate)
	assert.True(t, (<-done).Success)
	assert.Len(t, p.submitCalls(), 1)
}
