package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
)

// AuditRepository persists one row per deletion attempt in PostgreSQL.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts an audit entry, assigning its ID and timestamp when unset.
func (r *AuditRepository) Record(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO account_deletions
			(id, actor_uid, target_uid, mode, outcome, stage, batches_committed, documents_deleted, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ActorUID,
		e.TargetUID,
		string(e.Mode),
		e.Outcome,
		string(e.Stage),
		e.BatchesCommitted,
		e.DocumentsDeleted,
		e.ErrorMessage,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListByTarget returns the most recent attempts against uid, newest first.
func (r *AuditRepository) ListByTarget(ctx context.Context, uid string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, actor_uid, target_uid, mode, outcome, stage, batches_committed, documents_deleted, error_message, created_at
		FROM account_deletions
		WHERE target_uid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var mode string
		var stage, errMsg sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.ActorUID,
			&e.TargetUID,
			&mode,
			&e.Outcome,
			&stage,
			&e.BatchesCommitted,
			&e.DocumentsDeleted,
			&errMsg,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Mode = domain.Mode(mode)
		if stage.Valid {
			e.Stage = domain.Stage(stage.String)
		}
		if errMsg.Valid {
			e.ErrorMessage = errMsg.String
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return out, nil
}
