package service

import (
	"context"
	"io"
	"time"

	"cloudnative/fitapp/internal/cache"
	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/metrics"
	"cloudnative/fitapp/internal/progression"
	"cloudnative/fitapp/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWorkoutsTTL  = 900 * time.Second
	DefaultExercisesTTL = 600 * time.Second
	DefaultMaxAttempts  = 3
)

// Deps are the collaborators shared by the workout, exercise, set and user services.
type Deps struct {
	Workouts repository.WorkoutRepository
	Users    repository.UserRepository
	Cache    cache.Cache
	Engine   *progression.Engine
	Hooks    metrics.Hooks
	Log      logrus.FieldLogger

	Now   func() time.Time
	NewID func() domain.ID

	WorkoutsTTL  time.Duration
	ExercisesTTL time.Duration

	// MaxAttempts bounds load-mutate-put rounds when a write hits a version conflict.
	MaxAttempts int
	// Compensate undoes the first half of a workout/user write pair when the second half fails.
	// When false the dangling reference is only logged.
	Compensate bool
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Hooks == nil {
		d.Hooks = metrics.NoopHooks()
	}
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = l
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.NewID == nil {
		d.NewID = domain.NewID
	}
	if d.Engine == nil {
		d.Engine = progression.NewEngine(progression.WithClock(d.Now), progression.WithIDGenerator(d.NewID))
	}
	if d.WorkoutsTTL <= 0 {
		d.WorkoutsTTL = DefaultWorkoutsTTL
	}
	if d.ExercisesTTL <= 0 {
		d.ExercisesTTL = DefaultExercisesTTL
	}
	if d.MaxAttempts < 1 {
		d.MaxAttempts = DefaultMaxAttempts
	}
	return d
}

type callerKey struct{}

// WithCaller scopes ctx to an authenticated user. Lookups made with a scoped
// context only see that user's aggregates; anything else reports not found.
func WithCaller(ctx context.Context, userID domain.ID) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerFrom returns the user ctx is scoped to, or the zero ID.
func CallerFrom(ctx context.Context) domain.ID {
	id, _ := ctx.Value(callerKey{}).(domain.ID)
	return id
}

// visibleTo reports whether a document owned by ownerID may be seen under ctx.
func visibleTo(ctx context.Context, ownerID domain.ID) bool {
	caller := CallerFrom(ctx)
	return caller.IsZero() || caller == ownerID
}
