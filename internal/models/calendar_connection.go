package models

import (
	"time"

	"github.com/google/uuid"
)

// CalendarConnection is a tenant's link to the external calendar provider.
// At most one exists per tenant. SyncCursor is the provider's opaque
// incremental-sync token; it is nil until the first fully successful pull
// and only ever advanced after one.
type CalendarConnection struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	CalendarID  string    `json:"calendar_id"`
	SyncEnabled bool      `json:"sync_enabled"`

	SyncCursor   *string    `json:"-"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
