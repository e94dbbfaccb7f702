package service

import (
	"errors"
	"fmt"

	"cloudnative/fitapp/internal/repository"
)

// --- Error Kinds ---
// Every error returned by a service matches exactly one kind via errors.Is,
// or none when the failure is infrastructural.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("concurrent modification, retry the request")
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound  = fmt.Errorf("workout %w", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("exercise %w", ErrNotFound)
	ErrSetNotFound      = fmt.Errorf("set %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidRest        = fmt.Errorf("%w: rest must not be negative", ErrValidation)
	ErrInvalidGoal        = fmt.Errorf("%w: goal must be one of POWER, MUSCLE, ENDURANCE", ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: type must be one of WEIGHTS, DURATION, BODYWEIGHT", ErrValidation)
	ErrInvalidProgression = fmt.Errorf("%w: invalid progression parameters", ErrValidation)
	ErrInvalidSet         = fmt.Errorf("%w: reps, weight and duration must not be negative", ErrValidation)
	ErrDuplicateExercise  = fmt.Errorf("%w: exercise listed more than once", ErrValidation)
	ErrInvalidStreakGoal  = fmt.Errorf("%w: streak goal must be between 0 and 7", ErrValidation)
	ErrInvalidBodyweight  = fmt.Errorf("%w: bodyweight must be positive", ErrValidation)
)

// errorStatus classifies err for metrics labels.
func errorStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict), errors.Is(err, repository.ErrConflict):
		return "conflict"
	default:
		return "failure"
	}
}
