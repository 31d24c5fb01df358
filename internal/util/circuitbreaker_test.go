package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: threshold,
		ResetTimeout:     30 * time.Second,
	}, nil, zap.NewNop())
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2)

	cb.RecordFailure(0)
	assert.True(t, cb.CanExecute())

	cb.RecordFailure(0)
	assert.False(t, cb.CanExecute())
	assert.Equal(t, CircuitStateOpen, cb.Status().State)
	assert.NotNil(t, cb.Status().NextRetryTime)
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb, now := newTestBreaker(1)

	cb.RecordFailure(0)
	assert.False(t, cb.CanExecute())

	*now = now.Add(31 * time.Second)
	assert.Equal(t, CircuitStateHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, cb.State())
	assert.Equal(t, 0, cb.Status().FailureCount)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(3)

	cb.RecordFailure(0)
	cb.RecordFailure(0)
	cb.RecordFailure(time.Minute)
	*now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitStateHalfOpen, cb.State())

	cb.RecordFailure(0)
	assert.Equal(t, CircuitStateOpen, cb.Status().State)
}

func TestCircuitBreakerSuccessClearsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)

	cb.RecordFailure(0)
	cb.RecordSuccess()
	cb.RecordFailure(0)

	assert.True(t, cb.CanExecute())

	cb.Reset()
	assert.Equal(t, 0, cb.Status().FailureCount)
}
