// Package memory holds in-process implementations of the repository
// interfaces. They follow the same version and routing rules as the MongoDB
// implementations and are used for local runs and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"
)

type workoutEntry struct {
	workout *domain.Workout
	seq     uint64
}

type workoutRepo struct {
	mu       sync.RWMutex
	workouts map[domain.ID]workoutEntry
	seq      uint64
}

// NewWorkoutRepository returns an empty in-memory workout store.
func NewWorkoutRepository() repository.WorkoutRepository {
	return &workoutRepo{
		workouts: make(map[domain.ID]workoutEntry),
	}
}

func (r *workoutRepo) Get(_ context.Context, id domain.ID) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e.workout.Clone(), nil
}

func (r *workoutRepo) GetAll(_ context.Context) ([]domain.Workout, error) {
	return r.list(func(*domain.Workout) bool { return true }), nil
}

func (r *workoutRepo) GetAllByOwner(_ context.Context, ownerID domain.ID) ([]domain.Workout, error) {
	return r.list(func(w *domain.Workout) bool { return w.UserID == ownerID }), nil
}

func (r *workoutRepo) list(match func(*domain.Workout) bool) []domain.Workout {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]workoutEntry, 0, len(r.workouts))
	for _, e := range r.workouts {
		if match(e.workout) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].workout, entries[j].workout
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]domain.Workout, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.workout.Clone())
	}
	return out
}

func (r *workoutRepo) Put(_ context.Context, workout *domain.Workout) (*domain.Workout, error) {
	if workout.ID.IsZero() || workout.UserID.IsZero() {
		return nil, errors.New("workout requires id and userId")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := workout.Clone()
	now := time.Now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now

	stored, exists := r.workouts[next.ID]
	switch {
	case exists && stored.workout.UserID != next.UserID:
		if workout.Version == 0 {
			return nil, repository.ErrDuplicate
		}
		return nil, repository.ErrNotFound
	case workout.Version == 0 && exists:
		next.Version = stored.workout.Version + 1
	case workout.Version == 0:
		next.Version = 1
	case !exists:
		return nil, repository.ErrNotFound
	case stored.workout.Version != workout.Version:
		return nil, repository.ErrConflict
	default:
		next.Version = workout.Version + 1
	}

	seq := stored.seq
	if !exists {
		r.seq++
		seq = r.seq
	}
	r.workouts[next.ID] = workoutEntry{workout: next, seq: seq}
	return next.Clone(), nil
}

func (r *workoutRepo) Delete(_ context.Context, id, ownerID domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.workouts[id]
	if !ok || e.workout.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}
