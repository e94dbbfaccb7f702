// Package progression implements the per-exercise progression state machine.
//
// The engine only touches the exercise it is given. Time and ids come from
// injectable sources so that a sequence of calls is reproducible.
package progression

import (
	"math"
	"time"

	"cloudnative/fitapp/internal/domain"
)

// Engine advances and regresses exercise progression state.
type Engine struct {
	now   func() time.Time
	newID func() domain.ID
}

type Option func(*Engine)

// WithClock replaces time.Now as the source of progress timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces domain.NewID as the source of progress ids.
func WithIDGenerator(newID func() domain.ID) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   func() time.Time { return time.Now().UTC() },
		newID: domain.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AutoIncrease moves the exercise one step forward. It reports false and
// leaves the exercise untouched when auto increase is disabled.
func (e *Engine) AutoIncrease(ex *domain.Exercise) bool {
	if !ex.AutoIncrease {
		return false
	}
	p := &ex.Progression

	if ex.Type == domain.TypeDuration {
		p.CurrentDuration = addDuration(p.CurrentDuration, p.Factor)
		e.AppendDuration(ex, p.CurrentDuration)
		return true
	}

	// the weight that was just completed is recorded before moving on
	e.AppendWeight(ex, p.CurrentWeight)
	p.CurrentReps = addRepsAndSets(p.CurrentReps, p.Factor)
	if p.CurrentReps < p.MaxReps {
		return true
	}

	p.CurrentReps = p.MinReps
	p.CurrentSets = addRepsAndSets(p.CurrentSets, p.Factor)
	if p.CurrentSets < p.MaxSets {
		return true
	}

	switch ex.Type {
	case domain.TypeWeights:
		p.CurrentSets = p.MinSets
		p.CurrentWeight = addWeight(p.CurrentWeight, p.Factor, p.WeightStep)
	case domain.TypeBodyweight:
		p.CurrentSets = p.MaxSets
	}
	return true
}

// AutoDecrease moves the exercise one step back. Weight only drops, and is
// only recorded, when a WEIGHTS exercise wraps below its minimum sets.
func (e *Engine) AutoDecrease(ex *domain.Exercise) bool {
	if !ex.AutoIncrease {
		return false
	}
	p := &ex.Progression

	if ex.Type == domain.TypeDuration {
		p.CurrentDuration = subtractDuration(p.CurrentDuration, p.Factor)
		e.AppendDuration(ex, p.CurrentDuration)
		return true
	}

	p.CurrentReps = subtractRepsAndSets(p.CurrentReps, p.Factor)
	if p.CurrentReps > p.MinReps {
		return true
	}

	p.CurrentReps = p.MaxReps
	p.CurrentSets = subtractRepsAndSets(p.CurrentSets, p.Factor)
	if p.CurrentSets > p.MinSets {
		return true
	}

	switch ex.Type {
	case domain.TypeWeights:
		p.CurrentSets = p.MaxSets
		p.CurrentWeight = subtractWeight(p.CurrentWeight, p.Factor, p.WeightStep)
		e.AppendWeight(ex, p.CurrentWeight)
	case domain.TypeBodyweight:
		p.CurrentSets = p.MinSets
	}
	return true
}

// AppendWeight records a weight entry. When the latest entry already holds
// the same weight its timestamp is refreshed instead, so runs of identical
// weights collapse to a single entry carrying the most recent date.
func (e *Engine) AppendWeight(ex *domain.Exercise, weight float64) {
	now := e.now()
	if last := ex.LastProgress(); last != nil && last.Weight != nil && *last.Weight == weight {
		last.Date = now
		return
	}
	w := weight
	ex.ProgressList = append(ex.ProgressList, domain.Progress{
		ID:     e.newID(),
		Weight: &w,
		Date:   now,
	})
}

// AppendDuration always appends.
func (e *Engine) AppendDuration(ex *domain.Exercise, duration int) {
	d := duration
	ex.ProgressList = append(ex.ProgressList, domain.Progress{
		ID:       e.newID(),
		Duration: &d,
		Date:     e.now(),
	})
}

// Seed writes the first progress entry of an auto increasing exercise from its
// start weight or start duration. Exercises that already have history, or
// that do not auto increase, are left alone.
func (e *Engine) Seed(ex *domain.Exercise) bool {
	if !ex.AutoIncrease || len(ex.ProgressList) > 0 {
		return false
	}
	switch ex.Type {
	case domain.TypeWeights:
		e.AppendWeight(ex, ex.StartWeight)
	case domain.TypeDuration:
		e.AppendDuration(ex, ex.StartDuration)
	default:
		return false
	}
	return true
}

func addRepsAndSets(v int, factor float64) int {
	return max(v+1, roundInt(float64(v)*factor))
}

func subtractRepsAndSets(v int, factor float64) int {
	return max(v-1, roundInt(float64(v)/factor))
}

func addDuration(v int, factor float64) int {
	return max(v+5, roundInt(float64(v)*factor))
}

func subtractDuration(v int, factor float64) int {
	return max(v-5, roundInt(float64(v)/factor))
}

func addWeight(w, factor, step float64) float64 {
	if step <= 0 {
		return w * factor
	}
	return math.Ceil(w*factor/step) * step
}

func subtractWeight(w, factor, step float64) float64 {
	if step <= 0 {
		return w / factor
	}
	return math.Floor(w/factor/step) * step
}

func roundInt(f float64) int {
	return int(math.Round(f))
}
