// Package schedule runs the background jobs of the calendar server on cron
// schedules.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "medcal/internal/log"
)

// Job is one scheduled unit of work. Errors are logged, never fatal.
type Job func(ctx context.Context) error

// Scheduler wraps a cron instance bound to the display timezone.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	jobs int
}

// New creates a scheduler whose specs are interpreted in loc. Jobs receive
// ctx, and overlapping runs of the same job are skipped.
func New(ctx context.Context, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		ctx: ctx,
	}
}

// Add registers job under a standard 5-field spec. An empty spec is a no-op.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		appLog.Debug("schedule: job disabled", "job", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule: %s: %w", name, err)
	}
	s.jobs++
	appLog.Info("schedule: job registered", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	if err := job(s.ctx); err != nil {
		appLog.Error("schedule: job failed", err, "job", name, "elapsed", time.Since(start))
		return
	}
	appLog.Debug("schedule: job done", "job", name, "elapsed", time.Since(start))
}

// Len is the number of registered jobs.
func (s *Scheduler) Len() int {
	return s.jobs
}

// Run starts the scheduler and blocks until ctx is canceled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}
