package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloudnative/fitapp/internal/cache"
	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"

	"github.com/sirupsen/logrus"
)

// WorkoutUpdate replaces the editable fields of a workout.
// A nil ExerciseIDs keeps the current exercises and only compacts their order;
// a non-nil slice becomes the exact exercise list, in that order.
type WorkoutUpdate struct {
	Name        string
	Rest        int
	ExerciseIDs []domain.ID
}

// NewExercise describes an exercise to be added to a workout.
type NewExercise struct {
	Name string
	Type domain.WorkoutType
	Goal domain.Goal
}

type WorkoutService interface {
	CreateWorkout(ctx context.Context, name string, ownerID domain.ID) (*domain.Workout, error)
	GetWorkout(ctx context.Context, id domain.ID) (*domain.Workout, error)
	GetWorkoutsByUser(ctx context.Context, userID domain.ID) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, id domain.ID, in WorkoutUpdate) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, id domain.ID) error
	AddExerciseToWorkout(ctx context.Context, workoutID domain.ID, in NewExercise) (*domain.Exercise, error)
	DeleteExerciseFromWorkout(ctx context.Context, workoutID, exerciseID domain.ID) (*domain.Workout, error)
	GetExercisesByWorkout(ctx context.Context, workoutID domain.ID) ([]domain.Exercise, error)
}

type workoutService struct {
	deps   Deps
	writer *aggregateWriter
	cache  readCache
	log    logrus.FieldLogger
}

func NewWorkoutService(deps Deps) WorkoutService {
	deps = deps.withDefaults()
	return &workoutService{
		deps:   deps,
		writer: newAggregateWriter(deps),
		cache:  readCache{cache: deps.Cache, log: deps.Log},
		log:    deps.Log.WithField("service", "workout"),
	}
}

// CreateWorkout stores a new workout and links it to its owner.
//
// The two writes are not atomic. If linking fails the workout stays behind
// without an owner reference; with compensation enabled it is deleted again.
func (s *workoutService) CreateWorkout(ctx context.Context, name string, ownerID domain.ID) (*domain.Workout, error) {
	const op = "workout.create"

	// 1. Validate Input
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !visibleTo(ctx, ownerID) {
		return nil, ErrUserNotFound
	}

	// 2. The owner must exist before anything is written
	if _, err := s.deps.Users.GetByID(ctx, ownerID); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	// 3. Persist the workout
	start := time.Now()
	workout := domain.NewWorkout(s.deps.NewID(), ownerID, name, s.deps.Now())
	saved, err := s.deps.Workouts.Put(ctx, workout)
	s.writer.observe(op, start, err)
	if err != nil {
		return nil, err
	}
	// the owner's list changes from here on, whatever happens to the link
	defer s.cache.invalidate(context.WithoutCancel(ctx), cache.WorkoutsByUserKey(ownerID))

	var tx saga
	tx.done("workout.create", func(ctx context.Context) error {
		return s.deps.Workouts.Delete(ctx, saved.ID, saved.UserID)
	})

	// 4. Link it to the owner
	_, err = s.writer.updateUser(ctx, "user.add_workout", ownerID, func(u *domain.User) error {
		u.AddWorkout(saved.ID)
		return nil
	})
	if err != nil {
		return nil, s.crossAggregateFailure(ctx, &tx, op, saved.ID, ownerID, err)
	}
	return saved, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, id domain.ID) (*domain.Workout, error) {
	workout, err := s.deps.Workouts.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrWorkoutNotFound)
	}
	if !visibleTo(ctx, workout.UserID) {
		return nil, ErrWorkoutNotFound
	}
	workout.Exercises = workout.SortedExercises()
	return workout, nil
}

// GetWorkoutsByUser lists the user's workouts through the read cache.
func (s *workoutService) GetWorkoutsByUser(ctx context.Context, userID domain.ID) ([]domain.Workout, error) {
	if !visibleTo(ctx, userID) {
		return nil, ErrUserNotFound
	}
	if _, err := s.deps.Users.GetByID(ctx, userID); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	return cachedRead(ctx, s.cache, cache.WorkoutsByUserKey(userID), s.deps.WorkoutsTTL, func() ([]domain.Workout, error) {
		workouts, err := s.deps.Workouts.GetAllByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		for i := range workouts {
			workouts[i].Exercises = workouts[i].SortedExercises()
		}
		return workouts, nil
	})
}

func (s *workoutService) UpdateWorkout(ctx context.Context, id domain.ID, in WorkoutUpdate) (*domain.Workout, error) {
	// 1. Validate Input
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.Rest < 0 {
		return nil, ErrInvalidRest
	}

	// 2. Load, apply, store
	saved, err := s.writer.updateWorkout(ctx, "workout.update", id, func(w *domain.Workout) error {
		if err := w.Reorder(in.ExerciseIDs); err != nil {
			return mapReorderErr(err)
		}
		w.Name = name
		w.Rest = in.Rest
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, saved)
	return saved, nil
}

// DeleteWorkout unlinks the workout from its owner and then deletes it.
// A missing owner does not block the delete.
func (s *workoutService) DeleteWorkout(ctx context.Context, id domain.ID) error {
	const op = "workout.delete"

	// 1. Find the workout and its owner
	workout, err := s.GetWorkout(ctx, id)
	if err != nil {
		return err
	}
	ownerID := workout.UserID

	// 2. Drop the reference from the owner
	var tx saga
	removed := false
	_, err = s.writer.updateUser(ctx, "user.remove_workout", ownerID, func(u *domain.User) error {
		removed = u.RemoveWorkout(id)
		return nil
	})
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.log.WithFields(logrus.Fields{"workoutId": id, "userId": ownerID}).Warn("deleting workout of a missing user")
	case err != nil:
		return err
	case removed:
		tx.done("user.remove_workout", func(ctx context.Context) error {
			_, err := s.writer.updateUser(ctx, "user.add_workout", ownerID, func(u *domain.User) error {
				u.AddWorkout(id)
				return nil
			})
			return err
		})
	}
	defer s.invalidate(context.WithoutCancel(ctx), workout)

	// 3. Delete the workout itself
	start := time.Now()
	err = s.deps.Workouts.Delete(ctx, id, ownerID)
	s.writer.observe(op, start, err)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// deleted concurrently, the owner reference is gone as well
			return ErrWorkoutNotFound
		}
		return s.crossAggregateFailure(ctx, &tx, op, id, ownerID, err)
	}
	return nil
}

// AddExerciseToWorkout appends a new exercise seeded from the goal preset.
func (s *workoutService) AddExerciseToWorkout(ctx context.Context, workoutID domain.ID, in NewExercise) (*domain.Exercise, error) {
	// 1. Build the exercise
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	exercise, err := domain.NewExercise(s.deps.NewID(), name, in.Type, in.Goal)
	if err != nil {
		return nil, mapDomainErr(err)
	}

	// 2. Append and store
	saved, err := s.writer.updateWorkout(ctx, "workout.add_exercise", workoutID, func(w *domain.Workout) error {
		w.AddExercise(exercise)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, saved)
	added := saved.Exercise(exercise.ID).Clone()
	return &added, nil
}

// DeleteExerciseFromWorkout removes one exercise. The orderIndex of the
// remaining exercises is left as is, so the sequence may have gaps until
// the next UpdateWorkout.
func (s *workoutService) DeleteExerciseFromWorkout(ctx context.Context, workoutID, exerciseID domain.ID) (*domain.Workout, error) {
	saved, err := s.writer.updateWorkout(ctx, "workout.delete_exercise", workoutID, func(w *domain.Workout) error {
		if !w.RemoveExercise(exerciseID) {
			return ErrExerciseNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, saved)
	return saved, nil
}

// workoutExercises is the cached read model behind exercises:workout:{id}.
// The owner is kept so a hit can be checked against the caller.
type workoutExercises struct {
	UserID    domain.ID         `json:"userId"`
	Exercises []domain.Exercise `json:"exercises"`
}

// GetExercisesByWorkout lists a workout's exercises in orderIndex order through the read cache.
func (s *workoutService) GetExercisesByWorkout(ctx context.Context, workoutID domain.ID) ([]domain.Exercise, error) {
	cached, err := cachedRead(ctx, s.cache, cache.ExercisesByWorkoutKey(workoutID), s.deps.ExercisesTTL, func() (workoutExercises, error) {
		workout, err := s.GetWorkout(ctx, workoutID)
		if err != nil {
			return workoutExercises{}, err
		}
		return workoutExercises{UserID: workout.UserID, Exercises: workout.Exercises}, nil
	})
	if err != nil {
		return nil, err
	}
	if !visibleTo(ctx, cached.UserID) {
		return nil, ErrWorkoutNotFound
	}
	if cached.Exercises == nil {
		return []domain.Exercise{}, nil
	}
	return cached.Exercises, nil
}

// crossAggregateFailure handles a failure after the first of two aggregate
// writes succeeded. Without compensation the half-applied state stays and is
// logged; with it the first write is undone.
func (s *workoutService) crossAggregateFailure(ctx context.Context, tx *saga, op string, workoutID, userID domain.ID, cause error) error {
	fields := logrus.Fields{"operation": op, "workoutId": workoutID, "userId": userID}
	if !s.deps.Compensate {
		s.log.WithFields(fields).WithError(cause).Warn("workout and user references are out of sync")
		return cause
	}
	err := tx.compensate(ctx, cause)
	if err != cause {
		s.log.WithFields(fields).WithError(err).Error("compensation failed, references are out of sync")
	} else {
		s.log.WithFields(fields).WithError(cause).Info("rolled back partial write")
	}
	return err
}

func (s *workoutService) invalidate(ctx context.Context, w *domain.Workout) {
	invalidateWorkout(ctx, s.cache, w)
}

// invalidateWorkout drops every cached read model that embeds w.
func invalidateWorkout(ctx context.Context, c readCache, w *domain.Workout) {
	c.invalidate(ctx, cache.WorkoutsByUserKey(w.UserID), cache.ExercisesByWorkoutKey(w.ID))
}

func mapReorderErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateExercise):
		return ErrDuplicateExercise
	case errors.Is(err, domain.ErrExerciseNotInWorkout):
		return ErrExerciseNotFound
	}
	return err
}

// mapDomainErr converts domain validation failures into ErrValidation kinds.
func mapDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidGoal):
		return ErrInvalidGoal
	case errors.Is(err, domain.ErrInvalidType):
		return ErrInvalidType
	case errors.Is(err, domain.ErrInvalidProgression):
		return errors.Join(ErrInvalidProgression, err)
	}
	return err
}
