package service

import (
	"context"
	"errors"

	"cloudnative/fitapp/internal/domain"
)

type SetService interface {
	AddSetToExercise(ctx context.Context, exerciseID domain.ID, set domain.Set) (*domain.Set, error)
	GetSet(ctx context.Context, id domain.ID) (*domain.Set, error)
	UpdateSet(ctx context.Context, id domain.ID, values domain.Set) (*domain.Set, error)
	DeleteSet(ctx context.Context, id domain.ID) error
}

type setService struct {
	deps    Deps
	writer  *aggregateWriter
	locator ExerciseLocator
	cache   readCache
}

func NewSetService(deps Deps, locator ExerciseLocator) SetService {
	deps = deps.withDefaults()
	return &setService{
		deps:    deps,
		writer:  newAggregateWriter(deps),
		locator: locator,
		cache:   readCache{cache: deps.Cache, log: deps.Log},
	}
}

// AddSetToExercise appends a copy of set with a fresh id.
func (s *setService) AddSetToExercise(ctx context.Context, exerciseID domain.ID, set domain.Set) (*domain.Set, error) {
	if !validSet(set) {
		return nil, ErrInvalidSet
	}
	found, err := s.locator.FindExercise(ctx, exerciseID, "")
	if err != nil {
		return nil, err
	}

	set.ID = s.deps.NewID()
	saved, err := s.writer.updateWorkout(ctx, "set.add", found.Workout.ID, func(w *domain.Workout) error {
		ex := w.Exercise(exerciseID)
		if ex == nil {
			return ErrExerciseNotFound
		}
		ex.Sets = append(ex.Sets, set)
		return nil
	})
	if err != nil {
		return nil, exerciseGone(err)
	}

	invalidateWorkout(ctx, s.cache, saved)
	return &set, nil
}

func (s *setService) GetSet(ctx context.Context, id domain.ID) (*domain.Set, error) {
	found, err := s.locator.FindSet(ctx, id, "")
	if err != nil {
		return nil, err
	}
	set := *found.Set
	return &set, nil
}

// UpdateSet overwrites reps, weight and duration. The id is kept.
func (s *setService) UpdateSet(ctx context.Context, id domain.ID, values domain.Set) (*domain.Set, error) {
	if !validSet(values) {
		return nil, ErrInvalidSet
	}
	values.ID = id

	err := s.mutateSet(ctx, "set.update", id, func(ex *domain.Exercise, i int) {
		ex.Sets[i] = values
	})
	if err != nil {
		return nil, err
	}
	return &values, nil
}

func (s *setService) DeleteSet(ctx context.Context, id domain.ID) error {
	return s.mutateSet(ctx, "set.delete", id, func(ex *domain.Exercise, _ int) {
		ex.RemoveSet(id)
	})
}

func (s *setService) mutateSet(ctx context.Context, op string, id domain.ID, mutate func(ex *domain.Exercise, i int)) error {
	found, err := s.locator.FindSet(ctx, id, "")
	if err != nil {
		return err
	}
	exerciseID := found.Exercise.ID

	saved, err := s.writer.updateWorkout(ctx, op, found.Workout.ID, func(w *domain.Workout) error {
		ex := w.Exercise(exerciseID)
		if ex == nil {
			return ErrSetNotFound
		}
		i := ex.SetIndex(id)
		if i < 0 {
			return ErrSetNotFound
		}
		mutate(ex, i)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			return ErrSetNotFound
		}
		return err
	}

	invalidateWorkout(ctx, s.cache, saved)
	return nil
}

// exerciseGone reports a workout deleted between locate and update as a missing exercise.
func exerciseGone(err error) error {
	if errors.Is(err, ErrWorkoutNotFound) {
		return ErrExerciseNotFound
	}
	return err
}
