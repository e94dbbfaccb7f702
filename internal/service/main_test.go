package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"cloudnative/fitapp/internal/cache"
	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/metrics/testutil"
	"cloudnative/fitapp/internal/repository"
	"cloudnative/fitapp/internal/repository/memory"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// INFO: github.com/dgraph-io/ristretto v0.1.1 imports github.com/golang/glog, whose init starts a flushDaemon that never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"))
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// manualClock only moves when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func seqIDs(prefix string) func() domain.ID {
	var mu sync.Mutex
	n := 0
	return func() domain.ID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return domain.ID(fmt.Sprintf("%s%d", prefix, n))
	}
}

type fixture struct {
	ctx      context.Context
	workouts repository.WorkoutRepository
	users    repository.UserRepository
	cache    *cache.TestCache
	hooks    *testutil.HooksRecorder
	clock    *manualClock
	logs     *logtest.Hook
	deps     Deps

	workoutSvc  WorkoutService
	exerciseSvc ExerciseService
	setSvc      SetService
	userSvc     UserService
}

type fixtureOption func(*fixture)

func withCompensation() fixtureOption {
	return func(f *fixture) { f.deps.Compensate = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		ctx:      context.Background(),
		workouts: memory.NewWorkoutRepository(),
		users:    memory.NewUserRepository(),
		cache:    cache.NewTestCache(),
		hooks:    &testutil.HooksRecorder{},
		clock:    &manualClock{now: epoch},
		logs:     hook,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.deps.Workouts = f.workouts
	f.deps.Users = f.users
	f.deps.Cache = f.cache
	f.deps.Hooks = f.hooks
	f.deps.Log = logger
	f.deps.Now = f.clock.Now
	f.deps.NewID = seqIDs("id-")

	locator := NewExerciseLocator(f.workouts)
	f.workoutSvc = NewWorkoutService(f.deps)
	f.exerciseSvc = NewExerciseService(f.deps, locator)
	f.setSvc = NewSetService(f.deps, locator)
	f.userSvc = NewUserService(f.deps)
	return f
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := f.users.Create(f.ctx, &domain.User{Name: "Test User", Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func (f *fixture) workout(t *testing.T, ownerID domain.ID, name string) *domain.Workout {
	t.Helper()
	w, err := f.workoutSvc.CreateWorkout(f.ctx, name, ownerID)
	require.NoError(t, err)
	return w
}

func (f *fixture) exercise(t *testing.T, workoutID domain.ID, name string, goal domain.Goal) *domain.Exercise {
	t.Helper()
	ex, err := f.workoutSvc.AddExerciseToWorkout(f.ctx, workoutID, NewExercise{Name: name, Goal: goal})
	require.NoError(t, err)
	return ex
}

// racingWorkouts lets another writer sneak in before the next races puts.
type racingWorkouts struct {
	repository.WorkoutRepository
	mu    sync.Mutex
	races int
}

func (r *racingWorkouts) Put(ctx context.Context, w *domain.Workout) (*domain.Workout, error) {
	r.mu.Lock()
	race := r.races > 0 && w.Version > 0
	if race {
		r.races--
	}
	r.mu.Unlock()

	if race {
		current, err := r.WorkoutRepository.Get(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		current.Name += " (edited elsewhere)"
		if _, err := r.WorkoutRepository.Put(ctx, current); err != nil {
			return nil, err
		}
	}
	return r.WorkoutRepository.Put(ctx, w)
}

// failingUsers fails every Put.
type failingUsers struct {
	repository.UserRepository
	err error
}

func (r *failingUsers) Put(context.Context, *domain.User) (*domain.User, error) {
	return nil, r.err
}

// failingDeletes fails every Delete.
type failingDeletes struct {
	repository.WorkoutRepository
	err error
}

func (r *failingDeletes) Delete(context.Context, domain.ID, domain.ID) error {
	return r.err
}

// countingGets counts Get calls.
type countingGets struct {
	repository.WorkoutRepository
	mu   sync.Mutex
	gets int
}

func (r *countingGets) Get(ctx context.Context, id domain.ID) (*domain.Workout, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	return r.WorkoutRepository.Get(ctx, id)
}

func (r *countingGets) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}
