package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloudnative/fitapp/internal/domain"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type UserService interface {
	GetUser(ctx context.Context, id domain.ID) (*domain.User, error)
	UpdateStreakGoal(ctx context.Context, id domain.ID, goal int) (*domain.User, error)
	CompletedWorkout(ctx context.Context, id domain.ID) (*domain.User, error)
	AddBodyweight(ctx context.Context, id domain.ID, weight float64, date time.Time) (*domain.Bodyweight, error)
	GetBodyweight(ctx context.Context, id domain.ID) ([]domain.Bodyweight, error)
	// ValidateStreaks closes the current streak period for every user.
	ValidateStreaks(ctx context.Context) error
}

type userService struct {
	deps   Deps
	writer *aggregateWriter
	log    logrus.FieldLogger
}

func NewUserService(deps Deps) UserService {
	deps = deps.withDefaults()
	return &userService{
		deps:   deps,
		writer: newAggregateWriter(deps),
		log:    deps.Log.WithField("service", "user"),
	}
}

func (s *userService) GetUser(ctx context.Context, id domain.ID) (*domain.User, error) {
	if !visibleTo(ctx, id) {
		return nil, ErrUserNotFound
	}
	user, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) UpdateStreakGoal(ctx context.Context, id domain.ID, goal int) (*domain.User, error) {
	if goal < 0 || goal > domain.MaxStreakGoal {
		return nil, ErrInvalidStreakGoal
	}
	return s.update(ctx, "user.streak_goal", id, func(u *domain.User) error {
		u.StreakGoal = goal
		return nil
	})
}

// CompletedWorkout counts one finished workout towards the current streak period.
func (s *userService) CompletedWorkout(ctx context.Context, id domain.ID) (*domain.User, error) {
	return s.update(ctx, "user.completed_workout", id, func(u *domain.User) error {
		u.StreakProgress++
		return nil
	})
}

// AddBodyweight records a weigh-in. A zero date means now.
func (s *userService) AddBodyweight(ctx context.Context, id domain.ID, weight float64, date time.Time) (*domain.Bodyweight, error) {
	if weight <= 0 {
		return nil, ErrInvalidBodyweight
	}
	if date.IsZero() {
		date = s.deps.Now()
	}
	entry := domain.Bodyweight{ID: s.deps.NewID(), Weight: weight, Date: date}

	if _, err := s.update(ctx, "user.add_bodyweight", id, func(u *domain.User) error {
		u.Bodyweight = append(u.Bodyweight, entry)
		return nil
	}); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetBodyweight lists the user's weigh-ins, oldest first.
func (s *userService) GetBodyweight(ctx context.Context, id domain.ID) ([]domain.Bodyweight, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Bodyweight, len(user.Bodyweight))
	copy(out, user.Bodyweight)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ValidateStreaks runs at the end of each week. Users without a goal are
// skipped. A user who reached the goal extends the streak, anyone else
// loses it. Progress restarts at zero either way.
//
// Each user is its own aggregate write; a failure for one user does not
// stop the others, and all failures are returned together.
func (s *userService) ValidateStreaks(ctx context.Context) error {
	users, err := s.deps.Users.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	s.log.WithField("users", len(users)).Info("validating streaks")

	var errs error
	for _, u := range users {
		if u.StreakGoal == 0 {
			continue
		}
		_, err := s.writer.updateUser(ctx, "user.validate_streak", u.ID, func(u *domain.User) error {
			closeStreakPeriod(u)
			return nil
		})
		if err != nil {
			s.log.WithError(err).WithField("userId", u.ID).Error("streak validation failed")
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", u.ID, err))
		}
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
	}
	return errs
}

func closeStreakPeriod(u *domain.User) {
	if u.StreakGoal == 0 {
		return
	}
	if u.StreakGoal <= u.StreakProgress {
		u.Streak++
	} else {
		u.Streak = 0
	}
	u.StreakProgress = 0
}

func (s *userService) update(ctx context.Context, op string, id domain.ID, mutate func(*domain.User) error) (*domain.User, error) {
	if !visibleTo(ctx, id) {
		return nil, ErrUserNotFound
	}
	return s.writer.updateUser(ctx, op, id, mutate)
}
