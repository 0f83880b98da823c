package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
	"github.com/recipeshare/recipeshare-backend/internal/metrics"
)

// SweepReport summarizes one sweeper pass.
type SweepReport struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// Sweeper finishes deletions whose identity step failed, re-running the
// whole pipeline so any data written since the first attempt goes too.
type Sweeper struct {
	pipeline *Pipeline
	journal  Journal
	audit    AuditLog
	metrics  *metrics.DeletionMetrics
	log      *logging.Logger
	limiter  *rate.Limiter
	limit    int
}

type SweeperOptions struct {
	Pipeline  *Pipeline
	Journal   Journal
	Audit     AuditLog // optional
	Metrics   *metrics.DeletionMetrics
	Logger    *logging.Logger
	PerSecond float64
	Limit     int
}

func NewSweeper(opts SweeperOptions) *Sweeper {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	limit := rate.Inf
	if opts.PerSecond > 0 {
		limit = rate.Limit(opts.PerSecond)
	}
	return &Sweeper{
		pipeline: opts.Pipeline,
		journal:  opts.Journal,
		audit:    opts.Audit,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		limiter:  rate.NewLimiter(limit, 1),
		limit:    opts.Limit,
	}
}

// Sweep processes up to the configured number of pending accounts. Each
// failure is recorded on its journal entry and returned in the combined error.
func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	pending, err := s.journal.List(ctx, s.limit)
	if err != nil {
		return report, fmt.Errorf("list pending identities: %w", err)
	}

	var errs error
	for _, p := range pending {
		if err := s.limiter.Wait(ctx); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		report.Scanned++

		uctx := s.log.WithUID(ctx, p.UID)
		res, runErr := s.pipeline.Run(uctx, p.UID, p.Scope)
		if runErr != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("uid %s: %w", p.UID, runErr))
			if err := s.journal.RecordAttempt(uctx, p.UID, runErr.Error()); err != nil {
				s.log.Warn(uctx, "record sweep attempt", "error", err.Error())
			}
			s.log.Critical(uctx, "pending identity deletion still failing", runErr,
				"attempts", p.Attempts+1,
				"pending_since", p.FirstSeen.Format(time.RFC3339),
			)
			s.record(uctx, p.UID, res, domain.OutcomeIdentityPending, runErr)
			continue
		}

		if err := s.journal.Clear(uctx, p.UID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("uid %s: %w", p.UID, err))
			continue
		}
		report.Resolved++
		s.record(uctx, p.UID, res, domain.OutcomeSuccess, nil)
		s.log.Info(uctx, "pending identity deletion resolved", "documents_deleted", res.DocumentsDeleted)
	}

	if n, err := s.journal.Count(ctx); err == nil {
		s.metrics.SetPending(n)
	}
	return report, errs
}

func (s *Sweeper) record(ctx context.Context, uid string, res *domain.Result, outcome string, runErr error) {
	s.metrics.ObserveRun(string(domain.ModeSweep), outcome, 0)
	if s.audit == nil {
		return
	}
	e := &domain.AuditEntry{
		ActorUID:  "system",
		TargetUID: uid,
		Mode:      domain.ModeSweep,
		Outcome:   outcome,
	}
	if res != nil {
		e.BatchesCommitted = res.BatchesCommitted
		e.DocumentsDeleted = res.DocumentsDeleted
	}
	if runErr != nil {
		e.ErrorMessage = runErr.Error()
		e.Stage, _ = domain.StageOf(runErr)
	}
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Warn(ctx, "record sweep audit entry", "error", err.Error())
	}
}
