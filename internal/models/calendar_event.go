package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus tracks where an event stands relative to the external provider.
type SyncStatus string

const (
	// SyncStatusLocal means the event exists only locally and has never been pushed.
	SyncStatusLocal SyncStatus = "local"
	// SyncStatusSynced means the event matches provider state as of the last pass.
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusPending means a local edit has not been pushed yet.
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusConflict means divergent edits were detected and not auto-resolved.
	SyncStatusConflict SyncStatus = "conflict"
)

type EventCategory string

const (
	CategoryVendor      EventCategory = "vendor"
	CategoryDeadline    EventCategory = "deadline"
	CategoryAppointment EventCategory = "appointment"
	CategoryMilestone   EventCategory = "milestone"
	CategoryPersonal    EventCategory = "personal"
	CategoryOther       EventCategory = "other"
)

// CalendarEvent is a single entry on a tenant's wedding timeline.
// ProviderEventID is nil until the event has been pushed to (or pulled from)
// the external calendar; at most one event per tenant may reference a given
// provider event id.
type CalendarEvent struct {
	ID          uuid.UUID     `json:"id"`
	TenantID    uuid.UUID     `json:"tenant_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     *time.Time    `json:"end_time,omitempty"`
	AllDay      bool          `json:"all_day"`
	Location    *string       `json:"location,omitempty"`
	Category    EventCategory `json:"category"`
	Color       *string       `json:"color,omitempty"`
	VendorID    *uuid.UUID    `json:"vendor_id,omitempty"`
	TaskID      *uuid.UUID    `json:"task_id,omitempty"`

	ProviderEventID *string    `json:"provider_event_id,omitempty"`
	Etag            *string    `json:"-"`
	SyncStatus      SyncStatus `json:"sync_status"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
