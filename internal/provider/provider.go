// Package provider abstracts the external calendar service. The sync engine
// only sees these types; the Google implementation lives in google.go.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

var (
	// ErrConflict is returned when the provider rejects an update because
	// the supplied etag no longer matches (concurrent remote edit).
	ErrConflict = errors.New("provider reported a concurrent modification")

	// ErrNotFound is returned when the target event does not exist on the
	// provider side. Deleting an already-deleted event surfaces this.
	ErrNotFound = errors.New("provider event not found")

	// ErrCursorExpired is returned by List when the stored sync cursor is
	// no longer usable and the caller must re-list from scratch.
	ErrCursorExpired = errors.New("provider sync cursor expired")
)

// Any other error from a Calendar method is treated as transient: the caller
// leaves local state untouched and retries on a later pass.

// Event is the provider-side view of a calendar entry. Cancelled marks a
// deletion tombstone returned by an incremental listing.
type Event struct {
	ProviderID  string
	Etag        string
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	Cancelled   bool
}

// Delta is the result of one List call: every change since the cursor
// (or the full event set when the cursor was empty), plus the cursor to
// persist once the whole delta has been applied.
type Delta struct {
	Events     []Event
	NextCursor string
}

type CreateResult struct {
	ProviderID string
	Etag       string
}

type Calendar interface {
	// List returns all changes since cursor. Implementations consume the
	// provider's pagination internally, so a returned Delta is complete.
	List(ctx context.Context, calendarID, cursor string) (*Delta, error)
	Create(ctx context.Context, calendarID string, event *models.CalendarEvent) (*CreateResult, error)
	// Update applies event with an etag precondition and returns the new etag.
	Update(ctx context.Context, calendarID, providerID, etag string, event *models.CalendarEvent) (string, error)
	Delete(ctx context.Context, calendarID, providerID string) error
}

// Factory builds a Calendar bound to one tenant's connection credentials.
type Factory interface {
	ForConnection(ctx context.Context, conn *models.CalendarConnection) (Calendar, error)
}
