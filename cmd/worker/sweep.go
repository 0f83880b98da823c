package main

import (
	"context"
	"fmt"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/service"
	"github.com/recipeshare/recipeshare-backend/internal/bootstrap"
	"github.com/recipeshare/recipeshare-backend/internal/storage/postgres"
)

// runSweep makes one pass over the pending identity journal.
func runSweep(ctx context.Context, app *bootstrap.App) error {
	sweeper, err := app.RequireSweeper()
	if err != nil {
		return err
	}
	report, err := sweeper.Sweep(ctx)
	app.Log.Info(ctx, "sweep finished", "scanned", report.Scanned, "resolved", report.Resolved, "failed", report.Failed)
	return err
}

// runSchedule runs the sweeper on SWEEP_CRON until interrupted.
func runSchedule(ctx context.Context, app *bootstrap.App) error {
	sweeper, err := app.RequireSweeper()
	if err != nil {
		return err
	}
	sched := service.NewScheduler(sweeper, app.Log)
	if err := sched.Start(app.Config.Deletion.SweepCron); err != nil {
		return err
	}
	<-ctx.Done()
	sched.Stop()
	app.Log.Info(context.Background(), "scheduler stopped")
	return nil
}

// runMigrate creates the audit schema.
func runMigrate(ctx context.Context, app *bootstrap.App) error {
	if app.DB == nil {
		return fmt.Errorf("DB_HOST is required to migrate")
	}
	version, err := postgres.Migrate(ctx, app.DB)
	if err != nil {
		return err
	}
	app.Log.Info(ctx, "migrations applied", "version", version)
	return nil
}
