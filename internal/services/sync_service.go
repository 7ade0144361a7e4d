package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
	"github.com/GabeCabrera/aisle-board-sub002/internal/provider"
	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
)

var (
	// ErrNotConnected means the tenant has no sync-enabled calendar
	// connection. Returned before any side effect takes place.
	ErrNotConnected = errors.New("tenant has no active calendar connection")

	// ErrSyncInProgress means another pass currently holds the tenant's
	// sync lock. The caller should retry later.
	ErrSyncInProgress = errors.New("a sync pass is already running for this tenant")
)

// ConflictPolicy decides which side wins when a pull finds a remote edit to
// an event that also has an unpushed local edit. Pending product sign-off,
// local precedence is the default; nothing is auto-merged field by field.
type ConflictPolicy int

const (
	LocalWins ConflictPolicy = iota
	RemoteWins
)

// SyncResult summarises one reconciliation pass. Per-event failures are
// tallied in Failed and retried on the next pass; Success only flips to
// false when the pass as a whole could not complete.
type SyncResult struct {
	Success   bool   `json:"success"`
	Pushed    int    `json:"pushed"`
	Pulled    int    `json:"pulled"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
	Failed    int    `json:"failed"`
	Conflicts int    `json:"conflicts"`
	Error     string `json:"error,omitempty"`
}

// SyncService reconciles a tenant's local events with the external calendar:
// one push phase (local → provider) followed by one pull phase (provider →
// local), with the incremental cursor committed only after a clean pull.
type SyncService struct {
	events      repositories.EventRepository
	connections repositories.ConnectionRepository
	logs        repositories.SyncLogRepository
	locks       repositories.SyncLockRepository
	providers   provider.Factory
	policy      ConflictPolicy
	logger      *slog.Logger
}

func NewSyncService(
	events repositories.EventRepository,
	connections repositories.ConnectionRepository,
	logs repositories.SyncLogRepository,
	locks repositories.SyncLockRepository,
	providers provider.Factory,
	policy ConflictPolicy,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		events:      events,
		connections: connections,
		logs:        logs,
		locks:       locks,
		providers:   providers,
		policy:      policy,
		logger:      logger,
	}
}

// Synchronize runs one full pass for the tenant. It returns ErrNotConnected
// or ErrSyncInProgress without side effects; once a pass starts, it always
// appends exactly one sync log entry and reports the outcome in the result
// rather than as an error.
func (s *SyncService) Synchronize(ctx context.Context, tenantID uuid.UUID) (SyncResult, error) {
	var res SyncResult

	conn, err := s.connections.GetByTenant(ctx, tenantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return res, ErrNotConnected
	}
	if err != nil {
		return res, fmt.Errorf("failed to load calendar connection: %w", err)
	}
	if !conn.SyncEnabled {
		return res, ErrNotConnected
	}

	ok, err := s.locks.Acquire(ctx, tenantID)
	if err != nil {
		return res, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return res, ErrSyncInProgress
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), tenantID); err != nil {
			s.logger.Error("failed to release sync lock", "tenant_id", tenantID, "error", err)
		}
	}()

	res.Success = true
	s.runPass(ctx, conn, &res)
	s.appendLog(context.WithoutCancel(ctx), tenantID, &res)

	s.logger.Info("sync pass complete",
		"tenant_id", tenantID,
		"success", res.Success,
		"pushed", res.Pushed,
		"pulled", res.Pulled,
		"updated", res.Updated,
		"deleted", res.Deleted,
		"failed", res.Failed,
		"conflicts", res.Conflicts,
	)
	return res, nil
}

func (s *SyncService) runPass(ctx context.Context, conn *models.CalendarConnection, res *SyncResult) {
	cal, err := s.providers.ForConnection(ctx, conn)
	if err != nil {
		s.fatal(res, fmt.Errorf("failed to build provider client: %w", err))
		return
	}

	events, err := s.events.ListByTenant(ctx, conn.TenantID)
	if err != nil {
		s.fatal(res, fmt.Errorf("failed to load local events: %w", err))
		return
	}

	s.pushPhase(ctx, cal, conn, events, res)
	s.pullPhase(ctx, cal, conn, res)
}

// pushPhase sends every local or pending event to the provider. Failures
// here are per-event: the status stays unchanged so the next pass retries,
// and they never block the pull phase.
func (s *SyncService) pushPhase(ctx context.Context, cal provider.Calendar, conn *models.CalendarConnection, events []*models.CalendarEvent, res *SyncResult) {
	for _, event := range events {
		if ctx.Err() != nil {
			s.fatal(res, ctx.Err())
			return
		}
		if event.SyncStatus != models.SyncStatusLocal && event.SyncStatus != models.SyncStatusPending {
			continue
		}

		if event.ProviderEventID == nil {
			if s.pushCreate(ctx, cal, conn, event, res) {
				res.Pushed++
			}
			continue
		}

		etag := ""
		if event.Etag != nil {
			etag = *event.Etag
		}
		newEtag, err := cal.Update(ctx, conn.CalendarID, *event.ProviderEventID, etag, event)
		switch {
		case errors.Is(err, provider.ErrConflict):
			// Remote changed under us; flag it and keep the local fields
			// intact for the user to resolve.
			if markErr := s.events.MarkStatus(ctx, conn.TenantID, event.ID, models.SyncStatusConflict); markErr != nil {
				s.logger.Error("failed to flag conflict", "event_id", event.ID, "error", markErr)
				res.Failed++
				continue
			}
			event.SyncStatus = models.SyncStatusConflict
			res.Conflicts++
		case errors.Is(err, provider.ErrNotFound):
			// The remote copy disappeared; local precedence says recreate it.
			if s.pushCreate(ctx, cal, conn, event, res) {
				res.Pushed++
			}
		case err != nil:
			s.logger.Warn("push update failed", "event_id", event.ID, "error", err)
			res.Failed++
		default:
			if err := s.events.MarkSynced(ctx, conn.TenantID, event.ID, *event.ProviderEventID, newEtag); err != nil {
				s.logger.Error("failed to persist pushed update", "event_id", event.ID, "error", err)
				res.Failed++
				continue
			}
			event.Etag = &newEtag
			event.SyncStatus = models.SyncStatusSynced
			res.Updated++
		}
	}
}

// pushCreate inserts the event on the provider and commits the provider id,
// etag and synced status in one local write. Reports whether it succeeded.
func (s *SyncService) pushCreate(ctx context.Context, cal provider.Calendar, conn *models.CalendarConnection, event *models.CalendarEvent, res *SyncResult) bool {
	created, err := cal.Create(ctx, conn.CalendarID, event)
	if err != nil {
		s.logger.Warn("push create failed", "event_id", event.ID, "error", err)
		res.Failed++
		return false
	}

	if err := s.events.MarkSynced(ctx, conn.TenantID, event.ID, created.ProviderID, created.Etag); err != nil {
		s.logger.Error("failed to persist pushed create", "event_id", event.ID, "error", err)
		res.Failed++
		return false
	}

	event.ProviderEventID = &created.ProviderID
	event.Etag = &created.Etag
	event.SyncStatus = models.SyncStatusSynced
	return true
}

// pullPhase lists remote changes since the stored cursor and applies them
// locally. A listing failure is fatal for the pass and leaves the cursor
// untouched, so the next pass re-pulls the same window.
func (s *SyncService) pullPhase(ctx context.Context, cal provider.Calendar, conn *models.CalendarConnection, res *SyncResult) {
	cursor := ""
	if conn.SyncCursor != nil {
		cursor = *conn.SyncCursor
	}

	delta, err := cal.List(ctx, conn.CalendarID, cursor)
	if errors.Is(err, provider.ErrCursorExpired) && cursor != "" {
		s.logger.Info("sync cursor expired, re-listing from scratch", "tenant_id", conn.TenantID)
		delta, err = cal.List(ctx, conn.CalendarID, "")
	}
	if err != nil {
		s.fatal(res, fmt.Errorf("failed to list provider changes: %w", err))
		return
	}

	for i := range delta.Events {
		if ctx.Err() != nil {
			s.fatal(res, ctx.Err())
			return
		}
		s.applyRemote(ctx, conn, &delta.Events[i], res)
	}

	newCursor := delta.NextCursor
	if newCursor == "" {
		newCursor = cursor
	}
	if err := s.connections.CommitCursor(ctx, conn.TenantID, newCursor, time.Now().UTC()); err != nil {
		s.fatal(res, fmt.Errorf("failed to commit sync cursor: %w", err))
	}
}

// applyRemote reconciles one remote change against the local store. Each
// outcome commits its own record atomically, so a cancelled pass is safe to
// resume.
func (s *SyncService) applyRemote(ctx context.Context, conn *models.CalendarConnection, remote *provider.Event, res *SyncResult) {
	local, err := s.events.GetByProviderEventID(ctx, conn.TenantID, remote.ProviderID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		if remote.Cancelled {
			return // never had it locally
		}
		event := newEventFromRemote(conn.TenantID, remote)
		if err := s.events.Create(ctx, event); err != nil {
			s.logger.Error("failed to store pulled event", "provider_event_id", remote.ProviderID, "error", err)
			res.Failed++
			return
		}
		res.Pulled++

	case err != nil:
		s.logger.Error("failed to look up local event", "provider_event_id", remote.ProviderID, "error", err)
		res.Failed++

	case remote.Cancelled:
		if local.SyncStatus != models.SyncStatusSynced && s.policy == LocalWins {
			// Unpushed local edit outlives the remote deletion; the next
			// push phase recreates the event on the provider.
			return
		}
		if err := s.events.Delete(ctx, conn.TenantID, local.ID); err != nil {
			s.logger.Error("failed to delete event removed remotely", "event_id", local.ID, "error", err)
			res.Failed++
			return
		}
		res.Deleted++

	case local.SyncStatus == models.SyncStatusSynced || s.policy == RemoteWins:
		if local.Etag != nil && *local.Etag == remote.Etag {
			return // already current, usually our own push echoed back
		}
		applyRemoteFields(local, remote)
		if err := s.events.Update(ctx, local); err != nil {
			s.logger.Error("failed to apply remote update", "event_id", local.ID, "error", err)
			res.Failed++
			return
		}
		res.Updated++

	default:
		// pending or conflict: local precedence, remote edit not applied.
		res.Conflicts++
	}
}

func (s *SyncService) fatal(res *SyncResult, err error) {
	res.Success = false
	if res.Error == "" {
		res.Error = err.Error()
	}
	s.logger.Error("sync pass aborted", "error", err)
}

func (s *SyncService) appendLog(ctx context.Context, tenantID uuid.UUID, res *SyncResult) {
	entry := &models.SyncLogEntry{
		TenantID:  tenantID,
		Pushed:    res.Pushed,
		Pulled:    res.Pulled,
		Updated:   res.Updated,
		Deleted:   res.Deleted,
		Failed:    res.Failed,
		Conflicts: res.Conflicts,
		Success:   res.Success,
	}
	if res.Error != "" {
		entry.Error = &res.Error
	}

	// Log entries are diagnostics only; a write failure never fails the pass.
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append sync log entry", "tenant_id", tenantID, "error", err)
	}
}

func newEventFromRemote(tenantID uuid.UUID, remote *provider.Event) *models.CalendarEvent {
	event := &models.CalendarEvent{
		TenantID:        tenantID,
		Category:        models.CategoryOther,
		SyncStatus:      models.SyncStatusSynced,
		ProviderEventID: &remote.ProviderID,
	}
	applyRemoteFields(event, remote)
	return event
}

func applyRemoteFields(event *models.CalendarEvent, remote *provider.Event) {
	event.Title = remote.Title
	event.StartTime = remote.StartTime
	event.AllDay = remote.AllDay
	event.Description = optional(remote.Description)
	event.Location = optional(remote.Location)
	if remote.EndTime.IsZero() {
		event.EndTime = nil
	} else {
		end := remote.EndTime
		event.EndTime = &end
	}
	etag := remote.Etag
	event.Etag = &etag
	event.SyncStatus = models.SyncStatusSynced
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
