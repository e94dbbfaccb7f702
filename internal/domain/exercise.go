package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// WorkoutType decides how an exercise progresses.
type WorkoutType string

const (
	TypeWeights    WorkoutType = "WEIGHTS"
	TypeDuration   WorkoutType = "DURATION"
	TypeBodyweight WorkoutType = "BODYWEIGHT"
)

func (t WorkoutType) Valid() bool {
	switch t {
	case TypeWeights, TypeDuration, TypeBodyweight:
		return true
	}
	return false
}

// Goal selects a preset for the progression parameters of a new exercise.
type Goal string

const (
	GoalNone      Goal = ""
	GoalPower     Goal = "POWER"
	GoalMuscle    Goal = "MUSCLE"
	GoalEndurance Goal = "ENDURANCE"
)

var (
	ErrInvalidGoal        = errors.New("invalid goal")
	ErrInvalidType        = errors.New("invalid exercise type")
	ErrInvalidProgression = errors.New("invalid progression parameters")
)

var validate = validator.New()

// ParseGoal accepts the goal names case-insensitively. Empty input means no goal.
func ParseGoal(s string) (Goal, error) {
	g := Goal(strings.ToUpper(strings.TrimSpace(s)))
	switch g {
	case GoalNone, GoalPower, GoalMuscle, GoalEndurance:
		return g, nil
	}
	return "", ErrInvalidGoal
}

// ParseWorkoutType defaults to WEIGHTS on empty input.
func ParseWorkoutType(s string) (WorkoutType, error) {
	t := WorkoutType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" {
		return TypeWeights, nil
	}
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Progression holds the tuning parameters and the mutable state of the
// progression state machine.
type Progression struct {
	Factor        float64 `bson:"autoIncreaseFactor" json:"autoIncreaseFactor" validate:"gte=1"`
	WeightStep    float64 `bson:"autoIncreaseWeightStep" json:"autoIncreaseWeightStep" validate:"gt=0"`
	StartWeight   float64 `bson:"autoIncreaseStartWeight" json:"autoIncreaseStartWeight" validate:"gte=0"`
	MinSets       int     `bson:"autoIncreaseMinSets" json:"autoIncreaseMinSets" validate:"gte=1"`
	MaxSets       int     `bson:"autoIncreaseMaxSets" json:"autoIncreaseMaxSets" validate:"gtefield=MinSets"`
	MinReps       int     `bson:"autoIncreaseMinReps" json:"autoIncreaseMinReps" validate:"gte=1"`
	MaxReps       int     `bson:"autoIncreaseMaxReps" json:"autoIncreaseMaxReps" validate:"gtefield=MinReps"`
	StartDuration int     `bson:"autoIncreaseStartDuration" json:"autoIncreaseStartDuration" validate:"gte=0"`
	DurationSets  int     `bson:"autoIncreaseDurationSets" json:"autoIncreaseDurationSets" validate:"gte=0"`

	CurrentSets     int     `bson:"autoIncreaseCurrentSets" json:"autoIncreaseCurrentSets" validate:"gte=0"`
	CurrentReps     int     `bson:"autoIncreaseCurrentReps" json:"autoIncreaseCurrentReps" validate:"gte=0"`
	CurrentWeight   float64 `bson:"autoIncreaseCurrentWeight" json:"autoIncreaseCurrentWeight" validate:"gte=0"`
	CurrentDuration int     `bson:"autoIncreaseCurrentDuration" json:"autoIncreaseCurrentDuration" validate:"gte=0"`
}

// Validate checks the parameter block. The returned error wraps ErrInvalidProgression.
func (p Progression) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Join(ErrInvalidProgression, err)
	}
	return nil
}

// DefaultProgression is used when an exercise is created without a goal.
func DefaultProgression() Progression {
	return Progression{
		Factor:          1.05,
		WeightStep:      2.5,
		StartWeight:     20,
		MinSets:         3,
		MaxSets:         5,
		MinReps:         8,
		MaxReps:         12,
		StartDuration:   30,
		DurationSets:    3,
		CurrentSets:     3,
		CurrentReps:     8,
		CurrentWeight:   20,
		CurrentDuration: 30,
	}
}

type preset struct {
	rest        int
	factor      float64
	startWeight float64
	minSets     int
	maxSets     int
	minReps     int
	maxReps     int
}

var goalPresets = map[Goal]preset{
	GoalPower:     {rest: 240, factor: 1.05, startWeight: 40, minSets: 3, maxSets: 4, minReps: 2, maxReps: 8},
	GoalMuscle:    {rest: 180, factor: 1.1, startWeight: 20, minSets: 3, maxSets: 4, minReps: 8, maxReps: 15},
	GoalEndurance: {rest: 90, factor: 1.15, startWeight: 10, minSets: 3, maxSets: 4, minReps: 12, maxReps: 20},
}

// Exercise is embedded in a Workout.
type Exercise struct {
	ID           ID          `bson:"id" json:"id"`
	Name         string      `bson:"name" json:"name"`
	Type         WorkoutType `bson:"type" json:"type"`
	Rest         int         `bson:"rest" json:"rest"`
	AutoIncrease bool        `bson:"autoIncrease" json:"autoIncrease"`
	OrderIndex   int         `bson:"orderIndex" json:"orderIndex"`
	Progression  `bson:",inline"`
	Sets         []Set      `bson:"sets" json:"sets"`
	ProgressList []Progress `bson:"progressList" json:"progressList"`
}

// Set is a single planned set of an exercise.
type Set struct {
	ID       ID      `bson:"id" json:"id"`
	Reps     int     `bson:"reps" json:"reps"`
	Weight   float64 `bson:"weight" json:"weight"`
	Duration int     `bson:"duration" json:"duration"`
}

// Progress records the weight or duration reached at a point in time.
// Exactly one of Weight and Duration is set.
type Progress struct {
	ID       ID        `bson:"id" json:"id"`
	Weight   *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	Duration *int      `bson:"duration,omitempty" json:"duration,omitempty"`
	Date     time.Time `bson:"date" json:"date"`
}

// NewExercise builds an exercise with default parameters and applies the goal
// preset. Presets are ignored for DURATION exercises.
func NewExercise(id ID, name string, typ WorkoutType, goal Goal) (Exercise, error) {
	if typ == "" {
		typ = TypeWeights
	}
	if !typ.Valid() {
		return Exercise{}, ErrInvalidType
	}
	ex := Exercise{
		ID:           id,
		Name:         name,
		Type:         typ,
		Rest:         DefaultRest,
		AutoIncrease: true,
		Progression:  DefaultProgression(),
		Sets:         []Set{},
		ProgressList: []Progress{},
	}
	if err := ex.ApplyGoal(goal); err != nil {
		return Exercise{}, err
	}
	return ex, nil
}

// ApplyGoal overwrites the rest time and progression parameters with the goal preset.
func (e *Exercise) ApplyGoal(goal Goal) error {
	if goal == GoalNone {
		return nil
	}
	p, ok := goalPresets[goal]
	if !ok {
		return ErrInvalidGoal
	}
	if e.Type == TypeDuration {
		return nil
	}
	e.Rest = p.rest
	e.Factor = p.factor
	e.WeightStep = 2.5
	e.StartWeight = p.startWeight
	e.MinSets = p.minSets
	e.MaxSets = p.maxSets
	e.MinReps = p.minReps
	e.MaxReps = p.maxReps
	e.CurrentSets = p.minSets
	e.CurrentReps = p.minReps
	e.CurrentWeight = p.startWeight
	return nil
}

func (e *Exercise) SetIndex(id ID) int {
	for i := range e.Sets {
		if e.Sets[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Exercise) RemoveSet(id ID) bool {
	i := e.SetIndex(id)
	if i < 0 {
		return false
	}
	e.Sets = append(e.Sets[:i], e.Sets[i+1:]...)
	return true
}

// LastProgress returns the most recent progress entry, or nil.
func (e *Exercise) LastProgress() *Progress {
	if len(e.ProgressList) == 0 {
		return nil
	}
	return &e.ProgressList[len(e.ProgressList)-1]
}

func (e Exercise) Clone() Exercise {
	c := e
	if e.Sets != nil {
		c.Sets = make([]Set, len(e.Sets))
		copy(c.Sets, e.Sets)
	}
	if e.ProgressList != nil {
		c.ProgressList = make([]Progress, len(e.ProgressList))
		for i, p := range e.ProgressList {
			c.ProgressList[i] = p.Clone()
		}
	}
	return c
}

func (p Progress) Clone() Progress {
	c := p
	if p.Weight != nil {
		w := *p.Weight
		c.Weight = &w
	}
	if p.Duration != nil {
		d := *p.Duration
		c.Duration = &d
	}
	return c
}
