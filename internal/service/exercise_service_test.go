package service

import (
	"testing"
	"time"

	"cloudnative/fitapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushBenchPress_MuscleProgression(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	bench := f.exercise(t, w.ID, "Bench Press", domain.GoalMuscle)

	var at []time.Time
	wantReps := []int{9, 10, 11, 12, 13, 14, 8, 9}
	for i, reps := range wantReps {
		at = append(at, f.clock.Advance(time.Minute))
		ex, err := f.exerciseSvc.AutoIncrease(f.ctx, bench.ID)
		require.NoError(t, err)
		assert.Equal(t, reps, ex.CurrentReps, "call %d", i+1)
	}

	stored, err := f.exerciseSvc.GetExercise(f.ctx, bench.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentSets)
	assert.Equal(t, 22.5, stored.CurrentWeight)

	progress, err := f.exerciseSvc.GetProgress(f.ctx, bench.ID)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, 20.0, *progress[0].Weight)
	assert.Equal(t, at[6], progress[0].Date)
	assert.Equal(t, 22.5, *progress[1].Weight)
	assert.Equal(t, at[7], progress[1].Date)
}

func TestAutoIncrease_Disabled(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	in := updateFrom(*ex)
	in.AutoIncrease = false
	_, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	before, err := f.workouts.Get(f.ctx, w.ID)
	require.NoError(t, err)

	got, err := f.exerciseSvc.AutoIncrease(f.ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, ex.CurrentReps, got.CurrentReps)

	after, err := f.workouts.Get(f.ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestAutoDecrease(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalMuscle)

	got, err := f.exerciseSvc.AutoDecrease(f.ctx, ex.ID)
	require.NoError(t, err)
	// 8 reps and 3 sets are the minimum, so both wrap and the weight drops
	assert.Equal(t, 15, got.CurrentReps)
	assert.Equal(t, 4, got.CurrentSets)
	assert.Equal(t, 17.5, got.CurrentWeight)
	require.Len(t, got.ProgressList, 1)
	assert.Equal(t, 17.5, *got.ProgressList[0].Weight)

	_, err = f.exerciseSvc.AutoDecrease(f.ctx, "nope")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestAutoIncrease_RetriesOnConflict(t *testing.T) {
	racing := &racingWorkouts{}
	f := newFixture(t, func(f *fixture) {
		racing.WorkoutRepository = f.workouts
		f.workouts = racing
	})
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalMuscle)

	racing.races = 1
	got, err := f.exerciseSvc.AutoIncrease(f.ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.CurrentReps)
	assert.Equal(t, []string{"exercise.auto_increase"}, f.hooks.Conflicts)
	assert.Equal(t, []string{"exercise.auto_increase"}, f.hooks.Retries)

	stored, err := f.workouts.Get(f.ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push (edited elsewhere)", stored.Name)
	assert.Equal(t, 9, stored.Exercise(ex.ID).CurrentReps)
}

func TestAutoIncrease_GivesUpAfterMaxAttempts(t *testing.T) {
	racing := &racingWorkouts{}
	f := newFixture(t, func(f *fixture) {
		racing.WorkoutRepository = f.workouts
		f.workouts = racing
		f.deps.MaxAttempts = 3
	})
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalMuscle)

	racing.races = 10
	_, err := f.exerciseSvc.AutoIncrease(f.ctx, ex.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.hooks.Conflicts, 3)
	assert.Len(t, f.hooks.Retries, 2)
	assert.Equal(t, []string{"conflict"}, f.hooks.Statuses("exercise.auto_increase"))

	stored, err := f.workouts.Get(f.ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Exercise(ex.ID).CurrentReps)
}

func updateFrom(ex domain.Exercise) ExerciseUpdate {
	return ExerciseUpdate{
		Name:         ex.Name,
		Type:         ex.Type,
		Rest:         ex.Rest,
		AutoIncrease: ex.AutoIncrease,
		Progression:  ex.Progression,
		Sets:         ex.Sets,
	}
}

func TestUpdateExercise(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	in := updateFrom(*ex)
	in.Name = "Incline Bench"
	in.Rest = 120
	in.Progression.StartWeight = 30
	in.Sets = []domain.Set{{Reps: 8, Weight: 30}, {Reps: 8, Weight: 30}}

	got, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Incline Bench", got.Name)
	assert.Equal(t, 120, got.Rest)
	require.Len(t, got.Sets, 2)
	assert.False(t, got.Sets[0].ID.IsZero())
	assert.NotEqual(t, got.Sets[0].ID, got.Sets[1].ID)

	// seeded from the start weight because history was empty
	require.Len(t, got.ProgressList, 1)
	assert.Equal(t, 30.0, *got.ProgressList[0].Weight)

	// keep the first set, change it, drop the second, add one
	in.Sets = []domain.Set{{ID: got.Sets[0].ID, Reps: 10, Weight: 32.5}, {Reps: 6, Weight: 35}}
	again, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	require.Len(t, again.Sets, 2)
	assert.Equal(t, got.Sets[0].ID, again.Sets[0].ID)
	assert.Equal(t, 10, again.Sets[0].Reps)
	assert.NotEqual(t, got.Sets[1].ID, again.Sets[1].ID)
	assert.Len(t, again.ProgressList, 1, "history is not seeded twice")
}

func TestUpdateExercise_SetsKeepTheirPlace(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	in := updateFrom(*ex)
	in.Sets = []domain.Set{{Reps: 8, Weight: 30}, {Reps: 6, Weight: 35}}
	got, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	require.Len(t, got.Sets, 2)
	a, b := got.Sets[0], got.Sets[1]

	// new set first, existing ones reversed, plus an id nobody knows
	in.Sets = []domain.Set{
		{Reps: 12, Weight: 20},
		{ID: b.ID, Reps: 5, Weight: 37.5},
		{ID: a.ID, Reps: 9, Weight: 30},
		{ID: "not-a-set", Reps: 3, Weight: 40},
	}
	again, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	require.Len(t, again.Sets, 4)

	assert.Equal(t, a.ID, again.Sets[0].ID)
	assert.Equal(t, 9, again.Sets[0].Reps)
	assert.Equal(t, b.ID, again.Sets[1].ID)
	assert.Equal(t, 37.5, again.Sets[1].Weight)
	assert.Equal(t, 12, again.Sets[2].Reps)
	assert.Equal(t, 3, again.Sets[3].Reps)
	for _, set := range again.Sets[2:] {
		assert.NotEqual(t, a.ID, set.ID)
		assert.NotEqual(t, b.ID, set.ID)
		assert.NotEqual(t, domain.ID("not-a-set"), set.ID)
	}

	// dropping the first existing set keeps the rest in order
	in.Sets = []domain.Set{again.Sets[3], again.Sets[1]}
	last, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	require.Len(t, last.Sets, 2)
	assert.Equal(t, b.ID, last.Sets[0].ID)
	assert.Equal(t, again.Sets[3].ID, last.Sets[1].ID)
}

func TestUpdateExercise_TypeChangeClearsProgress(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Core")
	ex := f.exercise(t, w.ID, "Plank", domain.GoalNone)

	_, err := f.exerciseSvc.AutoIncrease(f.ctx, ex.ID)
	require.NoError(t, err)

	in := updateFrom(*ex)
	in.Type = domain.TypeDuration
	got, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeDuration, got.Type)
	require.Len(t, got.ProgressList, 1)
	assert.Nil(t, got.ProgressList[0].Weight)
	assert.Equal(t, ex.StartDuration, *got.ProgressList[0].Duration)
}

func TestUpdateExercise_Validation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann@example.com")
	w := f.workout(t, u.ID, "Push")
	ex := f.exercise(t, w.ID, "Bench Press", domain.GoalNone)

	bad := updateFrom(*ex)
	bad.Progression.MaxReps = bad.Progression.MinReps - 1
	_, err := f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidProgression)
	assert.ErrorIs(t, err, ErrValidation)

	bad = updateFrom(*ex)
	bad.Type = "CARDIO"
	_, err = f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidType)

	bad = updateFrom(*ex)
	bad.Sets = []domain.Set{{Reps: -1}}
	_, err = f.exerciseSvc.UpdateExercise(f.ctx, ex.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidSet)

	_, err = f.exerciseSvc.UpdateExercise(f.ctx, "nope", updateFrom(*ex))
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestGetExercisesByUser(t *testing.T) {
	f := newFixture(t)
	ann := f.user(t, "ann@example.com")
	bob := f.user(t, "bob@example.com")
	push := f.workout(t, ann.ID, "Push")
	pull := f.workout(t, ann.ID, "Pull")
	other := f.workout(t, bob.ID, "Legs")
	a := f.exercise(t, push.ID, "Bench Press", domain.GoalNone)
	b := f.exercise(t, pull.ID, "Row", domain.GoalNone)
	f.exercise(t, other.ID, "Squat", domain.GoalNone)

	got, err := f.exerciseSvc.GetExercisesByUser(f.ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	_, err = f.exerciseSvc.GetExercisesByUser(f.ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// a caller never sees someone else's exercise
	_, err = f.exerciseSvc.GetExercise(WithCaller(f.ctx, bob.ID), a.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}
