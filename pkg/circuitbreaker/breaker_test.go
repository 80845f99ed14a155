package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_TripsAfterFailures(t *testing.T) {
	cb := New(DefaultConfig("test"))
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}

	assert.Equal(t, "open", State(cb))

	calls := 0
	_, err := Execute(cb, func() (int, error) {
		calls++
		return 1, nil
	})
	assert.True(t, IsOpen(err))
	assert.Contains(t, err.Error(), "circuit breaker 'test' is open")
	assert.Equal(t, 0, calls)
}

func TestExecute_ReturnsTypedResult(t *testing.T) {
	cb := New(DefaultConfig("test"))

	got, err := Execute(cb, func() (string, error) { return "ok", nil })

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, "closed", State(cb))
}
