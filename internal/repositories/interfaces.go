package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByEmail(ctx context.Context, email string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventRepository interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CalendarEvent, error)
	GetByProviderEventID(ctx context.Context, tenantID uuid.UUID, providerEventID string) (*models.CalendarEvent, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.CalendarEvent, error)
	Update(ctx context.Context, event *models.CalendarEvent) error
	// MarkSynced assigns the provider event id, etag and synced status in a
	// single write, so a cancelled pass never leaves a provider id without
	// its matching status flip.
	MarkSynced(ctx context.Context, tenantID, id uuid.UUID, providerEventID, etag string) error
	MarkStatus(ctx context.Context, tenantID, id uuid.UUID, status models.SyncStatus) error
	// ClearProviderLinks detaches every event from the provider after a
	// disconnect: provider ids and etags are dropped, statuses reset to local.
	ClearProviderLinks(ctx context.Context, tenantID uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.CalendarConnection) error
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*models.CalendarConnection, error)
	ListSyncEnabled(ctx context.Context) ([]*models.CalendarConnection, error)
	SetSyncEnabled(ctx context.Context, tenantID uuid.UUID, enabled bool) error
	UpdateToken(ctx context.Context, tenantID uuid.UUID, access, refresh string, expiresAt time.Time) error
	// CommitCursor advances the sync cursor and last-sync timestamp in one
	// write. Callers only invoke it after a fully successful pull.
	CommitCursor(ctx context.Context, tenantID uuid.UUID, cursor string, syncedAt time.Time) error
	Delete(ctx context.Context, tenantID uuid.UUID) error
}

type SyncLogRepository interface {
	Append(ctx context.Context, entry *models.SyncLogEntry) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.SyncLogEntry, error)
}

// SyncLockRepository serialises reconciliation passes per tenant. The lock
// carries a TTL so a crashed pass cannot block a tenant forever.
type SyncLockRepository interface {
	Acquire(ctx context.Context, tenantID uuid.UUID) (bool, error)
	Release(ctx context.Context, tenantID uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForTenant(ctx context.Context, tenantID uuid.UUID) error
}
