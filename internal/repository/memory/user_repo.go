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

type userRepo struct {
	mu      sync.RWMutex
	users   map[domain.ID]*domain.User
	byEmail map[string]domain.ID
}

// NewUserRepository returns an empty in-memory user store.
func NewUserRepository() repository.UserRepository {
	return &userRepo{
		users:   make(map[domain.ID]*domain.User),
		byEmail: make(map[string]domain.ID),
	}
}

func (r *userRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return nil, errors.New("user email and password hash are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, repository.ErrDuplicate
	}
	created := user.Clone()
	if created.ID.IsZero() {
		created.ID = domain.NewID()
	}
	if _, taken := r.users[created.ID]; taken {
		return nil, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Version = 1
	if created.WorkoutIDs == nil {
		created.WorkoutIDs = []domain.ID{}
	}

	r.users[created.ID] = created
	r.byEmail[created.Email] = created.ID
	return created.Clone(), nil
}

func (r *userRepo) GetByID(_ context.Context, id domain.ID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// GetAll returns every user ordered by creation time.
func (r *userRepo) GetAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *userRepo) Put(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID.IsZero() {
		return nil, errors.New("user id is required for update")
	}
	if user.Version == 0 {
		return r.Create(ctx, user)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored.Version != user.Version {
		return nil, repository.ErrConflict
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return nil, repository.ErrDuplicate
	}

	next := user.Clone()
	next.UpdatedAt = time.Now().UTC()
	next.Version = user.Version + 1

	delete(r.byEmail, stored.Email)
	r.users[next.ID] = next
	r.byEmail[next.Email] = next.ID
	return next.Clone(), nil
}

func (r *userRepo) Delete(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	return nil
}
