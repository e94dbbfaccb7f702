package service

import (
	"context"
	"sort"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"
)

// LocatedExercise is an exercise together with the workout that embeds it.
// Exercise points into Workout.Exercises, so changes made through it are
// persisted by writing Workout back.
type LocatedExercise struct {
	Workout  *domain.Workout
	Exercise *domain.Exercise
}

// LocatedSet is a set together with its exercise and workout.
type LocatedSet struct {
	Workout  *domain.Workout
	Exercise *domain.Exercise
	Set      *domain.Set
}

// ExerciseLocator finds embedded exercises and sets.
//
// Exercises are not indexed by id on their own, so every lookup loads the
// candidate workouts and scans them. A lookup costs O(total exercises in the
// scanned workouts): all workouts when no owner is known, otherwise only the
// owner's. This bounds the practical size of one user's workout set.
type ExerciseLocator interface {
	FindExercise(ctx context.Context, exerciseID, ownerID domain.ID) (LocatedExercise, error)
	FindExercisesByOwner(ctx context.Context, ownerID domain.ID) ([]LocatedExercise, error)
	FindSet(ctx context.Context, setID, ownerID domain.ID) (LocatedSet, error)
}

type exerciseLocator struct {
	workouts repository.WorkoutRepository
}

func NewExerciseLocator(workouts repository.WorkoutRepository) ExerciseLocator {
	return &exerciseLocator{workouts: workouts}
}

// candidates returns the workouts to scan. An empty ownerID falls back to the
// caller bound to ctx, and scans every workout when there is none.
func (l *exerciseLocator) candidates(ctx context.Context, ownerID domain.ID) ([]domain.Workout, error) {
	if ownerID.IsZero() {
		ownerID = CallerFrom(ctx)
	}
	if ownerID.IsZero() {
		return l.workouts.GetAll(ctx)
	}
	if !visibleTo(ctx, ownerID) {
		return nil, nil
	}
	return l.workouts.GetAllByOwner(ctx, ownerID)
}

func (l *exerciseLocator) FindExercise(ctx context.Context, exerciseID, ownerID domain.ID) (LocatedExercise, error) {
	workouts, err := l.candidates(ctx, ownerID)
	if err != nil {
		return LocatedExercise{}, err
	}
	for i := range workouts {
		w := &workouts[i]
		if ex := w.Exercise(exerciseID); ex != nil {
			return LocatedExercise{Workout: w, Exercise: ex}, nil
		}
	}
	return LocatedExercise{}, ErrExerciseNotFound
}

// FindExercisesByOwner lists the owner's exercises grouped by workout, each
// group in orderIndex order.
func (l *exerciseLocator) FindExercisesByOwner(ctx context.Context, ownerID domain.ID) ([]LocatedExercise, error) {
	workouts, err := l.candidates(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := []LocatedExercise{}
	for i := range workouts {
		w := &workouts[i]
		order := make([]int, len(w.Exercises))
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool {
			return w.Exercises[order[a]].OrderIndex < w.Exercises[order[b]].OrderIndex
		})
		for _, j := range order {
			out = append(out, LocatedExercise{Workout: w, Exercise: &w.Exercises[j]})
		}
	}
	return out, nil
}

func (l *exerciseLocator) FindSet(ctx context.Context, setID, ownerID domain.ID) (LocatedSet, error) {
	workouts, err := l.candidates(ctx, ownerID)
	if err != nil {
		return LocatedSet{}, err
	}
	for i := range workouts {
		w := &workouts[i]
		for j := range w.Exercises {
			ex := &w.Exercises[j]
			if k := ex.SetIndex(setID); k >= 0 {
				return LocatedSet{Workout: w, Exercise: ex, Set: &ex.Sets[k]}, nil
			}
		}
	}
	return LocatedSet{}, ErrSetNotFound
}
