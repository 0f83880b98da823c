package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/recipeshare/recipeshare-backend/internal/logging"
)

// Scheduler runs the sweeper on a cron spec (with seconds field).
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	log     *logging.Logger
	timeout time.Duration
}

func NewScheduler(sweeper *Sweeper, log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		sweeper: sweeper,
		log:     log,
		timeout: 5 * time.Minute,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("register sweep job %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info(context.Background(), "sweep scheduler started", "spec", spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.Error(ctx, "sweep finished with failures", err,
			"scanned", report.Scanned, "resolved", report.Resolved, "failed", report.Failed)
		return
	}
	s.log.Info(ctx, "sweep finished",
		"scanned", report.Scanned, "resolved", report.Resolved, "failed", report.Failed)
}
