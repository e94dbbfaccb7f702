package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestSaga_CompensatesInReverseOrder(t *testing.T) {
	var order []string
	var tx saga
	for _, name := range []string{"first", "second", "third"} {
		tx.done(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	cause := errors.New("step four failed")
	err := tx.compensate(context.Background(), cause)
	assert.Same(t, cause, err)
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestSaga_RunsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var tx saga
	tx.done("undo", func(ctx context.Context) error { return ctx.Err() })
	err := tx.compensate(ctx, errors.New("cause"))
	assert.Len(t, multierr.Errors(err), 1)
}

func TestSaga_CollectsUndoFailures(t *testing.T) {
	undoA := errors.New("undo a")
	undoB := errors.New("undo b")
	var tx saga
	tx.done("a", func(context.Context) error { return undoA })
	tx.done("b", func(context.Context) error { return undoB })

	cause := errors.New("cause")
	err := tx.compensate(context.Background(), cause)
	require.Len(t, multierr.Errors(err), 3)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, undoA)
	assert.ErrorIs(t, err, undoB)
}

// brokenCache fails every call.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) { return false, errCacheDown }
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Invalidate(context.Context, ...string) error { return errCacheDown }

func TestCachedRead_CacheFailuresAreNotFatal(t *testing.T) {
	f := newFixture(t)
	c := readCache{cache: brokenCache{}, log: f.deps.Log}

	calls := 0
	got, err := cachedRead(f.ctx, c, "k", time.Minute, func() ([]int, error) {
		calls++
		return []int{1, 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, calls)

	c.invalidate(f.ctx, "k")
	assert.Equal(t, "cache invalidation failed", f.logs.LastEntry().Message)
}

func TestWorkoutService_WorksWithBrokenCache(t *testing.T) {
	f := newFixture(t)
	f.deps.Cache = brokenCache{}
	svc := NewWorkoutService(f.deps)
	u := f.user(t, "ann@example.com")

	w, err := svc.CreateWorkout(f.ctx, "Push", u.ID)
	require.NoError(t, err)
	got, err := svc.GetWorkoutsByUser(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, w.ID, got[0].ID)
}
