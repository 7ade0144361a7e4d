package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

var ErrNotFound = errors.New("not found")

const eventColumns = `id, tenant_id, title, description, start_time, end_time, all_day,
                      location, category, color, vendor_id, task_id,
                      provider_event_id, etag, sync_status, created_at, updated_at`

type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

func (r *PostgresEventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	query := `INSERT INTO calendar_events
	              (tenant_id, title, description, start_time, end_time, all_day,
	               location, category, color, vendor_id, task_id,
	               provider_event_id, etag, sync_status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		event.TenantID,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.AllDay,
		event.Location,
		event.Category,
		event.Color,
		event.VendorID,
		event.TaskID,
		event.ProviderEventID,
		event.Etag,
		event.SyncStatus,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM calendar_events
	          WHERE tenant_id = $1 AND id = $2`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar event: %w", err)
	}
	return event, nil
}

func (r *PostgresEventRepository) GetByProviderEventID(ctx context.Context, tenantID uuid.UUID, providerEventID string) (*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM calendar_events
	          WHERE tenant_id = $1 AND provider_event_id = $2`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, tenantID, providerEventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar event by provider id: %w", err)
	}
	return event, nil
}

func (r *PostgresEventRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM calendar_events
	          WHERE tenant_id = $1
	          ORDER BY start_time ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []*models.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar events: %w", err)
	}

	return events, nil
}

// Update writes every mutable column in one statement, including the sync
// fields. Callers set SyncStatus before calling so a user edit and its
// pending flag commit together.
func (r *PostgresEventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	query := `UPDATE calendar_events
	          SET title = $1, description = $2, start_time = $3, end_time = $4,
	              all_day = $5, location = $6, category = $7, color = $8,
	              vendor_id = $9, task_id = $10, provider_event_id = $11,
	              etag = $12, sync_status = $13, updated_at = NOW()
	          WHERE tenant_id = $14 AND id = $15`

	result, err := r.pool.Exec(ctx, query,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.AllDay,
		event.Location,
		event.Category,
		event.Color,
		event.VendorID,
		event.TaskID,
		event.ProviderEventID,
		event.Etag,
		event.SyncStatus,
		event.TenantID,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepository) MarkSynced(ctx context.Context, tenantID, id uuid.UUID, providerEventID, etag string) error {
	query := `UPDATE calendar_events
	          SET provider_event_id = $1, etag = $2, sync_status = $3, updated_at = NOW()
	          WHERE tenant_id = $4 AND id = $5`

	result, err := r.pool.Exec(ctx, query, providerEventID, etag, models.SyncStatusSynced, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to mark event synced: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepository) MarkStatus(ctx context.Context, tenantID, id uuid.UUID, status models.SyncStatus) error {
	query := `UPDATE calendar_events
	          SET sync_status = $1, updated_at = NOW()
	          WHERE tenant_id = $2 AND id = $3`

	result, err := r.pool.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to mark event status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresEventRepository) ClearProviderLinks(ctx context.Context, tenantID uuid.UUID) error {
	query := `UPDATE calendar_events
	          SET provider_event_id = NULL, etag = NULL, sync_status = $1, updated_at = NOW()
	          WHERE tenant_id = $2 AND provider_event_id IS NOT NULL`

	if _, err := r.pool.Exec(ctx, query, models.SyncStatusLocal, tenantID); err != nil {
		return fmt.Errorf("failed to clear provider links: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM calendar_events WHERE tenant_id = $1 AND id = $2`

	result, err := r.pool.Exec(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := row.Scan(
		&event.ID,
		&event.TenantID,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.AllDay,
		&event.Location,
		&event.Category,
		&event.Color,
		&event.VendorID,
		&event.TaskID,
		&event.ProviderEventID,
		&event.Etag,
		&event.SyncStatus,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
