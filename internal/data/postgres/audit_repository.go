// Package postgres provides the PostgreSQL implementation of the
// administrative audit trail. The trail lives outside the MongoDB atomic
// region on purpose: audit records must survive even when they describe
// operations that cannot be expressed as ledger entries.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/audit"
	"github.com/revenue-collection-core/internal/platform/persistence"
)

// AuditRepository implements the audit.Recorder interface for PostgreSQL
type AuditRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAuditRepository creates a new PostgreSQL audit repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAuditRepository(logger *slog.Logger, db *persistence.PostgresDB) audit.Recorder {
	return &AuditRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// NewAuditRepositoryWithQuerier creates a repository over an explicit querier,
// used by tests to substitute a mock connection.
func NewAuditRepositoryWithQuerier(logger *slog.Logger, querier persistence.Querier) audit.Recorder {
	return &AuditRepository{
		querier: querier,
		logger:  logger,
	}
}

// Record stores an audit record
func (r *AuditRepository) Record(ctx context.Context, rec *audit.Record) error {
	query := `
		INSERT INTO audit_log (id, action, wallet_id, amount, actor, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.Action,
		rec.WalletID,
		rec.Amount,
		rec.Actor,
		rec.Detail,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record audit entry", "action", rec.Action, "error", err)
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// ListByWallet retrieves paginated audit records for a wallet, newest first
func (r *AuditRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	query := `
		SELECT id, action, wallet_id, amount, actor, detail, created_at
		FROM audit_log
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list audit entries", "wallet_id", walletID.String(), "error", err)
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var rec audit.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Action,
			&rec.WalletID,
			&rec.Amount,
			&rec.Actor,
			&rec.Detail,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}

	return records, nil
}
