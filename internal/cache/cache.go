package cache

import (
	"context"
	"fmt"
	"time"

	"cloudnative/fitapp/internal/domain"
)

// Cache stores JSON encoded read models. Implementations must tolerate
// concurrent use. A miss is reported as (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

func WorkoutsByUserKey(userID domain.ID) string {
	return fmt.Sprintf("workouts:user:%s", userID)
}

func ExercisesByWorkoutKey(workoutID domain.ID) string {
	return fmt.Sprintf("exercises:workout:%s", workoutID)
}

var _ Cache = Noop{}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context, ...string) error                   { return nil }
