package repository

import (
	"context"

	"cloudnative/fitapp/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrConflict  = RepositoryError("version conflict")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// WorkoutRepository stores whole Workout aggregates. Every write replaces the
// complete document; there are no partial updates of embedded exercises.
type WorkoutRepository interface {
	Get(ctx context.Context, id domain.ID) (*domain.Workout, error)
	GetAll(ctx context.Context) ([]domain.Workout, error)
	GetAllByOwner(ctx context.Context, ownerID domain.ID) ([]domain.Workout, error)
	// Put inserts a workout with Version 0 and replaces it otherwise, failing
	// with ErrConflict when the stored version no longer matches. The returned
	// workout carries the new version.
	Put(ctx context.Context, workout *domain.Workout) (*domain.Workout, error)
	Delete(ctx context.Context, id, ownerID domain.ID) error
}

// UserRepository stores User aggregates, routed by email.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id domain.ID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	// Put follows the same version rules as WorkoutRepository.Put.
	Put(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id domain.ID) error
}
