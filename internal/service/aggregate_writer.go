package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/metrics"
	"cloudnative/fitapp/internal/repository"

	"github.com/sirupsen/logrus"
)

// aggregateWriter runs load, mutate and put cycles against whole aggregates.
//
// The mutation always runs on a freshly loaded copy, so a failed mutation or
// a failed put never leaves a partially applied change behind. A put that
// loses a version race is retried from the load, up to maxAttempts rounds.
type aggregateWriter struct {
	workouts    repository.WorkoutRepository
	users       repository.UserRepository
	hooks       metrics.Hooks
	log         logrus.FieldLogger
	maxAttempts int
}

func newAggregateWriter(d Deps) *aggregateWriter {
	return &aggregateWriter{
		workouts:    d.Workouts,
		users:       d.Users,
		hooks:       d.Hooks,
		log:         d.Log,
		maxAttempts: d.MaxAttempts,
	}
}

// observe reports the outcome of a read or single-shot write to the hooks.
func (w *aggregateWriter) observe(op string, start time.Time, err error) {
	w.hooks.ObserveOperation(op, errorStatus(err), time.Since(start))
}

// updateWorkout applies mutate to the current version of the workout and stores it.
func (w *aggregateWriter) updateWorkout(ctx context.Context, op string, id domain.ID, mutate func(*domain.Workout) error) (*domain.Workout, error) {
	load := func(ctx context.Context) (*domain.Workout, error) {
		workout, err := w.workouts.Get(ctx, id)
		if err != nil {
			return nil, mapNotFound(err, ErrWorkoutNotFound)
		}
		if !visibleTo(ctx, workout.UserID) {
			return nil, ErrWorkoutNotFound
		}
		return workout, nil
	}
	save := func(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
		saved, err := w.workouts.Put(ctx, workout)
		return saved, mapNotFound(err, ErrWorkoutNotFound)
	}
	return runUpdate(ctx, w, op, load, mutate, save)
}

// updateUser applies mutate to the current version of the user and stores it.
func (w *aggregateWriter) updateUser(ctx context.Context, op string, id domain.ID, mutate func(*domain.User) error) (*domain.User, error) {
	load := func(ctx context.Context) (*domain.User, error) {
		user, err := w.users.GetByID(ctx, id)
		return user, mapNotFound(err, ErrUserNotFound)
	}
	save := func(ctx context.Context, user *domain.User) (*domain.User, error) {
		saved, err := w.users.Put(ctx, user)
		return saved, mapNotFound(err, ErrUserNotFound)
	}
	return runUpdate(ctx, w, op, load, mutate, save)
}

func runUpdate[T any](
	ctx context.Context,
	w *aggregateWriter,
	op string,
	load func(context.Context) (T, error),
	mutate func(T) error,
	save func(context.Context, T) (T, error),
) (T, error) {
	start := time.Now()

	var (
		out T
		err error
	)
	for attempt := 1; ; attempt++ {
		out, err = runOnce(ctx, load, mutate, save)
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
		w.hooks.IncConflict(op)
		if attempt >= w.maxAttempts || ctx.Err() != nil {
			w.log.WithFields(logrus.Fields{"operation": op, "attempts": attempt}).Warn("giving up after version conflicts")
			err = fmt.Errorf("%s: %w", op, ErrConflict)
			break
		}
		w.hooks.IncRetry(op)
		w.log.WithFields(logrus.Fields{"operation": op, "attempt": attempt}).Debug("version conflict, reloading aggregate")
	}

	w.hooks.ObserveOperation(op, errorStatus(err), time.Since(start))
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func runOnce[T any](
	ctx context.Context,
	load func(context.Context) (T, error),
	mutate func(T) error,
	save func(context.Context, T) (T, error),
) (T, error) {
	var zero T

	// 1. Load the current version
	current, err := load(ctx)
	if err != nil {
		return zero, err
	}

	// 2. Apply the change in memory
	if err := mutate(current); err != nil {
		return zero, err
	}

	// 3. Write the whole aggregate back
	return save(ctx, current)
}

// mapNotFound turns the repository's not found into the service error notFound.
func mapNotFound(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}
