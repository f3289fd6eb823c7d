// Package jobs runs periodic housekeeping: expired sessions and spent or
// expired password-reset tokens are purged on a cron schedule.
package jobs

//go:generate mockgen -source=jobs.go -destination=mock_jobs.go -package=jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 2

type Purger interface {
	PurgeSessions(ctx context.Context, now time.Time) (int64, error)
	PurgeResets(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	schedule string
	purger   Purger
	workers  int
	now      func() time.Time
}

// New checks schedule, a standard cron spec or a descriptor such as "@every 1h".
func New(schedule string, purger Purger, workers int) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid housekeeping schedule %q: %w", schedule, err)
	}
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		purger:   purger,
		workers:  workers,
		now:      time.Now,
	}, nil
}

func (s *Scheduler) tasks() []Task {
	return []Task{
		func(ctx context.Context) error {
			n, err := s.purger.PurgeSessions(ctx, s.now())
			if err != nil {
				return fmt.Errorf("purge sessions: %w", err)
			}
			zap.L().Info("expired sessions purged", zap.Int64("count", n))
			return nil
		},
		func(ctx context.Context) error {
			n, err := s.purger.PurgeResets(ctx, s.now())
			if err != nil {
				return fmt.Errorf("purge password resets: %w", err)
			}
			zap.L().Info("password resets purged", zap.Int64("count", n))
			return nil
		},
	}
}

// RunOnce runs every housekeeping task concurrently and returns the first error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, task := range s.tasks() {
		g.Go(func() error { return task(ctx) })
	}
	return g.Wait()
}

// Run schedules housekeeping until ctx is done, then waits for running
// tasks to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	pool := NewWorkerPool(ctx, s.workers)

	_, err := s.cron.AddFunc(s.schedule, func() {
		for _, task := range s.tasks() {
			if err := pool.AddTask(ctx, task); err != nil {
				zap.L().Warn("housekeeping task skipped", zap.Error(err))
				return
			}
		}
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("schedule housekeeping: %w", err)
	}

	s.cron.Start()
	zap.L().Info("housekeeping scheduled", zap.String("schedule", s.schedule))
	<-ctx.Done()

	<-s.cron.Stop().Done()
	pool.Close()
	return nil
}
