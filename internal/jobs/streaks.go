// Package jobs runs scheduled maintenance against the aggregates.
package jobs

import (
	"context"
	"fmt"
	"time"

	"cloudnative/fitapp/internal/service"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// DefaultStreakSchedule fires at midnight between Saturday and Sunday.
const DefaultStreakSchedule = "0 0 0 * * SUN"

// StreakValidator closes a streak period for every user.
type StreakValidator interface {
	ValidateStreaks(ctx context.Context) error
}

var _ StreakValidator = service.UserService(nil)

// StreakJob runs StreakValidator on a cron schedule.
type StreakJob struct {
	validator StreakValidator
	schedule  string
	timeout   time.Duration
	log       logrus.FieldLogger
	cron      *cron.Cron
}

// NewStreakJob checks the schedule up front so a bad expression fails at startup.
func NewStreakJob(validator StreakValidator, schedule string, timeout time.Duration, log logrus.FieldLogger) (*StreakJob, error) {
	if schedule == "" {
		schedule = DefaultStreakSchedule
	}
	if _, err := cron.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid streak schedule %q: %w", schedule, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &StreakJob{
		validator: validator,
		schedule:  schedule,
		timeout:   timeout,
		log:       log.WithField("component", "StreakJob"),
		cron:      cron.New(),
	}, nil
}

// Start schedules the job. It stops when ctx is done.
func (j *StreakJob) Start(ctx context.Context) error {
	if err := j.cron.AddFunc(j.schedule, func() { j.Run(ctx) }); err != nil {
		return err
	}
	j.cron.Start()
	j.log.WithField("schedule", j.schedule).Info("streak validation scheduled")

	go func() {
		<-ctx.Done()
		j.cron.Stop()
	}()
	return nil
}

// Run performs one validation pass. Failures are logged, never propagated,
// so that one bad week does not stop the schedule.
func (j *StreakJob) Run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			j.log.WithField("panic", r).Error("streak validation panicked")
		}
	}()

	start := time.Now()
	if err := j.validator.ValidateStreaks(ctx); err != nil {
		j.log.WithError(err).Error("streak validation finished with errors")
		return
	}
	j.log.WithField("duration", time.Since(start)).Info("streak validation finished")
}
