package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

type PostgresSyncLogRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSyncLogRepository(pool *pgxpool.Pool) *PostgresSyncLogRepository {
	return &PostgresSyncLogRepository{pool: pool}
}

// Append writes one log entry. Entries are never updated or deleted by the
// application; retention is an operational concern.
func (r *PostgresSyncLogRepository) Append(ctx context.Context, entry *models.SyncLogEntry) error {
	query := `INSERT INTO sync_log
	              (tenant_id, pushed, pulled, updated, deleted, failed, conflicts, success, error)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.TenantID,
		entry.Pushed,
		entry.Pulled,
		entry.Updated,
		entry.Deleted,
		entry.Failed,
		entry.Conflicts,
		entry.Success,
		entry.Error,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

func (r *PostgresSyncLogRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.SyncLogEntry, error) {
	query := `SELECT id, tenant_id, pushed, pulled, updated, deleted, failed, conflicts, success, error, created_at
	          FROM sync_log
	          WHERE tenant_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer rows.Close()

	var entries []*models.SyncLogEntry
	for rows.Next() {
		var entry models.SyncLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.Pushed,
			&entry.Pulled,
			&entry.Updated,
			&entry.Deleted,
			&entry.Failed,
			&entry.Conflicts,
			&entry.Success,
			&entry.Error,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log: %w", err)
	}

	return entries, nil
}
