package service

import (
	"testing"

	"cloudnative/fitapp/internal/cache"
	"cloudnative/fitapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLifecycle(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	added, err := f.setSvc.AddSetToExercise(f.ctx, ex.ID, domain.Set{ID: "ignored", Reps: 8, Weight: 60})
	require.NoError(t, err)
	assert.NotEqual(t, domain.ID("ignored"), added.ID)

	got, err := f.setSvc.GetSet(f.ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, *added, *got)

	updated, err := f.setSvc.UpdateSet(f.ctx, added.ID, domain.Set{Reps: 6, Weight: 65})
	require.NoError(t, err)
	assert.Equal(t, added.ID, updated.ID)
	assert.Equal(t, 65.0, updated.Weight)

	stored, err := f.exerciseSvc.GetExercise(f.ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Set{*updated}, stored.Sets)

	require.NoError(t, f.setSvc.DeleteSet(f.ctx, added.ID))
	_, err = f.setSvc.GetSet(f.ctx, added.ID)
	assert.ErrorIs(t, err, ErrSetNotFound)
	assert.ErrorIs(t, f.setSvc.DeleteSet(f.ctx, added.ID), ErrSetNotFound)
}

func TestSetService_Errors(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	_, err := f.setSvc.AddSetToExercise(f.ctx, "nope", domain.Set{Reps: 8})
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	_, err = f.setSvc.AddSetToExercise(f.ctx, ex.ID, domain.Set{Weight: -5})
	assert.ErrorIs(t, err, ErrInvalidSet)

	_, err = f.setSvc.UpdateSet(f.ctx, "nope", domain.Set{Reps: 1})
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestSetWrites_InvalidateExercisesCache(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	_, err := f.workoutSvc.GetExercisesByWorkout(f.ctx, w.ID)
	require.NoError(t, err)
	require.True(t, f.cache.Has(cache.ExercisesByWorkoutKey(w.ID)))

	_, err = f.setSvc.AddSetToExercise(f.ctx, ex.ID, domain.Set{Reps: 8, Weight: 60})
	require.NoError(t, err)
	assert.False(t, f.cache.Has(cache.ExercisesByWorkoutKey(w.ID)))

	fresh, err := f.workoutSvc.GetExercisesByWorkout(f.ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, fresh[0].Sets, 1)
}
