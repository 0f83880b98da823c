package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/recipeshare/recipeshare-backend/config"
	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/repository"
	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/service"
	"github.com/recipeshare/recipeshare-backend/internal/auth"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/auth/middleware"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
	"github.com/recipeshare/recipeshare-backend/internal/mail"
	"github.com/recipeshare/recipeshare-backend/internal/metrics"
	"github.com/recipeshare/recipeshare-backend/internal/verification"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// App holds every long-lived dependency of the API and the worker.
type App struct {
	Config   *config.Config
	Log      *logging.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.DeletionMetrics

	Store      docstore.Store
	Identities identity.Provider
	// Verifier is nil in memory mode, where DevIdentity is used instead.
	Verifier middleware.TokenVerifier

	Firebase *auth.Clients
	Redis    *redis.Client
	DB       *sql.DB

	Cleanup      *service.CleanupService
	Sweeper      *service.Sweeper
	Verification *verification.Service
}

// Build connects the configured backends and assembles the services.
func Build(ctx context.Context, cfg *config.Config, log *logging.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  metrics.NewDeletionMetrics(reg),
	}

	switch cfg.App.DocumentStore {
	case StoreMemory:
		log.Warn(ctx, "using in-memory document store and identities; X-User-* headers are trusted")
		app.Store = docstore.NewMemoryStore()
		app.Identities = identity.NewMemoryProvider()
	default:
		clients, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
		app.Firebase = clients
		app.Store = docstore.NewFirestoreStore(clients.Firestore)
		app.Identities = identity.NewFirebaseProvider(clients.Auth)
		app.Verifier = clients.Auth
	}

	rdb, err := OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		if cfg.App.DocumentStore != StoreMemory {
			app.Close()
			return nil, err
		}
		log.Warn(ctx, "redis unavailable, pending identity journal disabled", "error", err.Error())
	}
	app.Redis = rdb

	db, err := OpenDB(ctx, &cfg.Database)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.DB = db

	var journal service.Journal
	if app.Redis != nil {
		journal = repository.NewJournalRepository(app.Redis)
	}
	var audit service.AuditLog
	if app.DB != nil {
		audit = repository.NewAuditRepository(app.DB)
	} else {
		log.Info(ctx, "audit database not configured, deletion audit disabled")
	}

	app.Cleanup = service.NewCleanupService(service.Options{
		Store:             app.Store,
		Identities:        app.Identities,
		Journal:           journal,
		Audit:             audit,
		Metrics:           app.Metrics,
		Logger:            log,
		BatchLimit:        cfg.Deletion.BatchLimit,
		RecentLoginWindow: cfg.Deletion.RecentLoginWindow,
	})

	if journal != nil {
		app.Sweeper = service.NewSweeper(service.SweeperOptions{
			Pipeline:  app.Cleanup.Pipeline(),
			Journal:   journal,
			Audit:     audit,
			Metrics:   app.Metrics,
			Logger:    log,
			PerSecond: cfg.Deletion.SweepPerSecond,
			Limit:     cfg.Deletion.SweepLimit,
		})
	}

	var sender mail.Sender = mail.NewLogSender(log)
	if cfg.Mail.Enabled() {
		sender = mail.NewSMTPSender(cfg.Mail, log)
	}
	app.Verification = verification.NewService(app.Identities, app.Store, sender, cfg.Mail.AppName, log)

	return app, nil
}

// RequireSweeper returns the sweeper or an error when no journal is configured.
func (a *App) RequireSweeper() (*service.Sweeper, error) {
	if a.Sweeper == nil {
		return nil, fmt.Errorf("REDIS_ADDR is required to sweep pending identities")
	}
	return a.Sweeper, nil
}

// Close releases every connection Build opened.
func (a *App) Close() {
	ctx := context.Background()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn(ctx, "close db", "error", err.Error())
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn(ctx, "close redis", "error", err.Error())
		}
	}
	if err := a.Firebase.Close(); err != nil {
		a.Log.Warn(ctx, "close firestore", "error", err.Error())
	}
}
