package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/recipeshare/recipeshare-backend/config"
	"github.com/recipeshare/recipeshare-backend/internal/bootstrap"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
)

type command func(ctx context.Context, app *bootstrap.App) error

var commands = map[string]command{
	"sweep":    runSweep,
	"schedule": runSchedule,
	"migrate":  runMigrate,
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker <sweep|schedule|migrate>")
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		log.Fatalf("unknown command: %s", os.Args[1])
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(logging.Options{
		ServiceName: "recipeshare-account-worker",
		Level:       logging.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "bootstrap failed", err)
		os.Exit(1)
	}

	err = run(ctx, app)
	app.Close()
	if err != nil {
		logger.Error(context.Background(), os.Args[1]+" failed", err)
		os.Exit(1)
	}
}
