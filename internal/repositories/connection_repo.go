package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

const connectionColumns = `id, tenant_id, calendar_id, sync_enabled, sync_cursor, last_synced_at,
                           access_token, refresh_token, token_expires_at, created_at, updated_at`

type PostgresConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresConnectionRepository(pool *pgxpool.Pool) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{pool: pool}
}

func (r *PostgresConnectionRepository) Create(ctx context.Context, conn *models.CalendarConnection) error {
	query := `INSERT INTO calendar_connections
	              (tenant_id, calendar_id, sync_enabled, access_token, refresh_token, token_expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		conn.TenantID,
		conn.CalendarID,
		conn.SyncEnabled,
		conn.AccessToken,
		conn.RefreshToken,
		conn.TokenExpiresAt,
	).Scan(&conn.ID, &conn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create calendar connection: %w", err)
	}
	return nil
}

func (r *PostgresConnectionRepository) GetByTenant(ctx context.Context, tenantID uuid.UUID) (*models.CalendarConnection, error) {
	query := `SELECT ` + connectionColumns + `
	          FROM calendar_connections
	          WHERE tenant_id = $1`

	conn, err := scanConnection(r.pool.QueryRow(ctx, query, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar connection: %w", err)
	}
	return conn, nil
}

func (r *PostgresConnectionRepository) ListSyncEnabled(ctx context.Context) ([]*models.CalendarConnection, error) {
	query := `SELECT ` + connectionColumns + `
	          FROM calendar_connections
	          WHERE sync_enabled = TRUE
	          ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.CalendarConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar connection: %w", err)
		}
		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar connections: %w", err)
	}

	return conns, nil
}

func (r *PostgresConnectionRepository) SetSyncEnabled(ctx context.Context, tenantID uuid.UUID, enabled bool) error {
	query := `UPDATE calendar_connections
	          SET sync_enabled = $1, updated_at = NOW()
	          WHERE tenant_id = $2`

	result, err := r.pool.Exec(ctx, query, enabled, tenantID)
	if err != nil {
		return fmt.Errorf("failed to set sync enabled: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresConnectionRepository) UpdateToken(ctx context.Context, tenantID uuid.UUID, access, refresh string, expiresAt time.Time) error {
	query := `UPDATE calendar_connections
	          SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = NOW()
	          WHERE tenant_id = $4`

	result, err := r.pool.Exec(ctx, query, access, refresh, expiresAt, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update connection token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresConnectionRepository) CommitCursor(ctx context.Context, tenantID uuid.UUID, cursor string, syncedAt time.Time) error {
	query := `UPDATE calendar_connections
	          SET sync_cursor = $1, last_synced_at = $2, updated_at = NOW()
	          WHERE tenant_id = $3`

	result, err := r.pool.Exec(ctx, query, cursor, syncedAt, tenantID)
	if err != nil {
		return fmt.Errorf("failed to commit sync cursor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresConnectionRepository) Delete(ctx context.Context, tenantID uuid.UUID) error {
	query := `DELETE FROM calendar_connections WHERE tenant_id = $1`

	result, err := r.pool.Exec(ctx, query, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete calendar connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanConnection(row rowScanner) (*models.CalendarConnection, error) {
	var conn models.CalendarConnection
	err := row.Scan(
		&conn.ID,
		&conn.TenantID,
		&conn.CalendarID,
		&conn.SyncEnabled,
		&conn.SyncCursor,
		&conn.LastSyncedAt,
		&conn.AccessToken,
		&conn.RefreshToken,
		&conn.TokenExpiresAt,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}
