package service

import (
	"context"
	"strings"

	"cloudnative/fitapp/internal/domain"

	"github.com/sirupsen/logrus"
)

// ExerciseUpdate carries the full editable state of an exercise.
// Sets are reconciled by id: known ids are updated in place, an empty id
// appends a new set, and sets missing from the list are dropped.
type ExerciseUpdate struct {
	Name         string
	Type         domain.WorkoutType
	Rest         int
	AutoIncrease bool
	Progression  domain.Progression
	Sets         []domain.Set
}

type ExerciseService interface {
	GetExercise(ctx context.Context, id domain.ID) (*domain.Exercise, error)
	GetExercisesByUser(ctx context.Context, userID domain.ID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, id domain.ID, in ExerciseUpdate) (*domain.Exercise, error)
	AutoIncrease(ctx context.Context, id domain.ID) (*domain.Exercise, error)
	AutoDecrease(ctx context.Context, id domain.ID) (*domain.Exercise, error)
	GetProgress(ctx context.Context, id domain.ID) ([]domain.Progress, error)
}

type exerciseService struct {
	deps    Deps
	writer  *aggregateWriter
	locator ExerciseLocator
	cache   readCache
	log     logrus.FieldLogger
}

func NewExerciseService(deps Deps, locator ExerciseLocator) ExerciseService {
	deps = deps.withDefaults()
	return &exerciseService{
		deps:    deps,
		writer:  newAggregateWriter(deps),
		locator: locator,
		cache:   readCache{cache: deps.Cache, log: deps.Log},
		log:     deps.Log.WithField("service", "exercise"),
	}
}

func (s *exerciseService) GetExercise(ctx context.Context, id domain.ID) (*domain.Exercise, error) {
	found, err := s.locator.FindExercise(ctx, id, "")
	if err != nil {
		return nil, err
	}
	ex := found.Exercise.Clone()
	return &ex, nil
}

// GetExercisesByUser flattens the exercises of every workout the user owns.
func (s *exerciseService) GetExercisesByUser(ctx context.Context, userID domain.ID) ([]domain.Exercise, error) {
	if !visibleTo(ctx, userID) {
		return nil, ErrUserNotFound
	}
	if _, err := s.deps.Users.GetByID(ctx, userID); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	located, err := s.locator.FindExercisesByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Exercise, 0, len(located))
	for _, l := range located {
		out = append(out, l.Exercise.Clone())
	}
	return out, nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, id domain.ID, in ExerciseUpdate) (*domain.Exercise, error) {
	// 1. Validate Input
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.Type == "" {
		in.Type = domain.TypeWeights
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	if in.Rest < 0 {
		return nil, ErrInvalidRest
	}
	if err := in.Progression.Validate(); err != nil {
		return nil, mapDomainErr(err)
	}
	for _, set := range in.Sets {
		if !validSet(set) {
			return nil, ErrInvalidSet
		}
	}

	// 2. Apply the new state to the owning workout
	return s.mutateExercise(ctx, "exercise.update", id, func(ex *domain.Exercise) error {
		if ex.Type != in.Type {
			ex.ProgressList = []domain.Progress{}
		}
		ex.Name = name
		ex.Type = in.Type
		ex.Rest = in.Rest
		ex.AutoIncrease = in.AutoIncrease
		ex.Progression = in.Progression
		ex.Sets = s.reconcileSets(ex.Sets, in.Sets)

		if ex.AutoIncrease && len(ex.ProgressList) == 0 {
			s.deps.Engine.Seed(ex)
		}
		return nil
	})
}

// AutoIncrease advances the exercise one progression step. Exercises with
// auto increase disabled are returned unchanged without a write.
func (s *exerciseService) AutoIncrease(ctx context.Context, id domain.ID) (*domain.Exercise, error) {
	return s.step(ctx, "exercise.auto_increase", id, s.deps.Engine.AutoIncrease)
}

func (s *exerciseService) AutoDecrease(ctx context.Context, id domain.ID) (*domain.Exercise, error) {
	return s.step(ctx, "exercise.auto_decrease", id, s.deps.Engine.AutoDecrease)
}

func (s *exerciseService) GetProgress(ctx context.Context, id domain.ID) ([]domain.Progress, error) {
	ex, err := s.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	if ex.ProgressList == nil {
		return []domain.Progress{}, nil
	}
	return ex.ProgressList, nil
}

func (s *exerciseService) step(ctx context.Context, op string, id domain.ID, apply func(*domain.Exercise) bool) (*domain.Exercise, error) {
	found, err := s.locator.FindExercise(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if !found.Exercise.AutoIncrease {
		s.log.WithFields(logrus.Fields{"operation": op, "exerciseId": id}).Debug("auto increase disabled, nothing to do")
		ex := found.Exercise.Clone()
		return &ex, nil
	}
	return s.mutateExercise(ctx, op, id, func(ex *domain.Exercise) error {
		apply(ex)
		return nil
	})
}

// mutateExercise locates the workout embedding exercise id and runs mutate
// on the exercise inside the workout's update cycle.
func (s *exerciseService) mutateExercise(ctx context.Context, op string, id domain.ID, mutate func(*domain.Exercise) error) (*domain.Exercise, error) {
	found, err := s.locator.FindExercise(ctx, id, "")
	if err != nil {
		return nil, err
	}

	saved, err := s.writer.updateWorkout(ctx, op, found.Workout.ID, func(w *domain.Workout) error {
		ex := w.Exercise(id)
		if ex == nil {
			// moved out of the workout since it was located
			return ErrExerciseNotFound
		}
		return mutate(ex)
	})
	if err != nil {
		return nil, exerciseGone(err)
	}

	invalidateWorkout(ctx, s.cache, saved)
	ex := saved.Exercise(id).Clone()
	return &ex, nil
}

// reconcileSets updates existing sets in place, drops the ones missing from
// incoming and appends new sets in the order they arrived. Sets with an
// empty or unknown id are new and get a fresh id.
func (s *exerciseService) reconcileSets(current, incoming []domain.Set) []domain.Set {
	known := make(map[domain.ID]bool, len(current))
	for _, set := range current {
		known[set.ID] = true
	}

	updates := make(map[domain.ID]domain.Set, len(incoming))
	var added []domain.Set
	for _, set := range incoming {
		if !set.ID.IsZero() && known[set.ID] {
			updates[set.ID] = set
			continue
		}
		set.ID = s.deps.NewID()
		added = append(added, set)
	}

	out := make([]domain.Set, 0, len(updates)+len(added))
	for _, set := range current {
		if upd, ok := updates[set.ID]; ok {
			out = append(out, upd)
		}
	}
	return append(out, added...)
}

func validSet(set domain.Set) bool {
	return set.Reps >= 0 && set.Weight >= 0 && set.Duration >= 0
}
