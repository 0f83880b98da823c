package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/recipeshare/recipeshare-backend/config"
	"github.com/recipeshare/recipeshare-backend/internal/storage/postgres"
)

// OpenDB connects to the audit database. It returns nil when no database is
// configured.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}
