package domain

import (
	"errors"
	"sort"
	"time"
)

// DefaultRest is the inter-set rest in seconds used when nothing else is configured.
const DefaultRest = 60

var (
	ErrDuplicateExercise    = errors.New("exercise listed more than once")
	ErrExerciseNotInWorkout = errors.New("exercise does not belong to workout")
)

// Workout is the aggregate root. Exercises, their sets and progress history
// are embedded and always persisted together with the workout.
type Workout struct {
	ID        ID         `bson:"_id" json:"id"`
	UserID    ID         `bson:"userId" json:"userId"` // routing key
	Name      string     `bson:"name" json:"name"`
	Rest      int        `bson:"rest" json:"rest"`
	Exercises []Exercise `bson:"exercises" json:"exercises"`
	Version   int64      `bson:"version" json:"version"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func NewWorkout(id, userID ID, name string, now time.Time) *Workout {
	return &Workout{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Rest:      DefaultRest,
		Exercises: []Exercise{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddExercise appends ex at the end of the workout. The returned pointer
// aliases the stored element and stays valid until the slice is modified again.
func (w *Workout) AddExercise(ex Exercise) *Exercise {
	ex.OrderIndex = len(w.Exercises)
	w.Exercises = append(w.Exercises, ex)
	return &w.Exercises[len(w.Exercises)-1]
}

// ExerciseIndex returns the slice position of the exercise with the given id, or -1.
func (w *Workout) ExerciseIndex(id ID) int {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return i
		}
	}
	return -1
}

func (w *Workout) Exercise(id ID) *Exercise {
	if i := w.ExerciseIndex(id); i >= 0 {
		return &w.Exercises[i]
	}
	return nil
}

// RemoveExercise deletes the exercise with the given id. Remaining exercises
// keep their orderIndex, so the sequence may contain gaps afterwards.
func (w *Workout) RemoveExercise(id ID) bool {
	i := w.ExerciseIndex(id)
	if i < 0 {
		return false
	}
	w.Exercises = append(w.Exercises[:i], w.Exercises[i+1:]...)
	return true
}

// Reorder makes the exercise list exactly ids, in that order, and rewrites
// orderIndex to 0..n-1. A nil ids keeps the current membership and only
// compacts the indices following the current order.
func (w *Workout) Reorder(ids []ID) error {
	if ids == nil {
		sorted := w.SortedExercises()
		for i := range sorted {
			sorted[i].OrderIndex = i
		}
		w.Exercises = sorted
		return nil
	}

	seen := make(map[ID]struct{}, len(ids))
	next := make([]Exercise, 0, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateExercise
		}
		seen[id] = struct{}{}
		ex := w.Exercise(id)
		if ex == nil {
			return ErrExerciseNotInWorkout
		}
		moved := *ex
		moved.OrderIndex = i
		next = append(next, moved)
	}
	w.Exercises = next
	return nil
}

// SortedExercises returns a copy of the exercises ordered by orderIndex.
func (w *Workout) SortedExercises() []Exercise {
	out := make([]Exercise, len(w.Exercises))
	copy(out, w.Exercises)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

// Clone returns a deep copy, sharing nothing with w.
func (w *Workout) Clone() *Workout {
	if w == nil {
		return nil
	}
	c := *w
	if w.Exercises != nil {
		c.Exercises = make([]Exercise, len(w.Exercises))
		for i := range w.Exercises {
			c.Exercises[i] = w.Exercises[i].Clone()
		}
	}
	return &c
}
