package service

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// saga collects undo steps for writes that span more than one aggregate.
type saga struct {
	steps []sagaStep
}

type sagaStep struct {
	name string
	undo func(context.Context) error
}

// done registers the undo action of a write that has succeeded.
func (s *saga) done(name string, undo func(context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

// compensate runs the registered undo steps in reverse order. The returned
// error carries cause plus every compensation that failed.
func (s *saga) compensate(ctx context.Context, cause error) error {
	// undo even if the request that started the saga was cancelled
	ctx = context.WithoutCancel(ctx)

	err := cause
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if undoErr := step.undo(ctx); undoErr != nil {
			err = multierr.Append(err, fmt.Errorf("compensate %s: %w", step.name, undoErr))
		}
	}
	s.steps = nil
	return err
}
