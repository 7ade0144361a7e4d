package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncLogEntry records the outcome of one reconciliation pass.
// Entries are append-only and used for diagnostics, never for correctness.
type SyncLogEntry struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	Pushed    int `json:"pushed"`
	Pulled    int `json:"pulled"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
	Conflicts int `json:"conflicts"`

	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
