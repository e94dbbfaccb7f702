package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerHooks(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	h := NewHooks(m)

	h.IncConflict("workout.update")
	h.IncConflict(" workout.update ")
	h.IncRetry("workout.update")
	h.ObserveOperation("workout.update", "success", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterConflicts.WithLabelValues("workout.update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRetries.WithLabelValues("workout.update")))

	count, err := testutil.GatherAndCount(reg, "fitapp_test_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewHooks_NilManager(t *testing.T) {
	h := NewHooks(nil)
	assert.NotPanics(t, func() {
		h.IncConflict("x")
		h.IncRetry("x")
		h.ObserveOperation("x", "success", time.Second)
	})
}
