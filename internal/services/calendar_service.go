package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
	"github.com/GabeCabrera/aisle-board-sub002/internal/provider"
	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
)

var ErrAlreadyConnected = errors.New("tenant already has a calendar connection")

// CalendarService is the tenant-facing surface for event CRUD and for
// managing the provider connection. User edits only flip sync statuses;
// the actual push/pull happens in SyncService. The one exception is
// deletion, which takes immediate effect on both sides.
type CalendarService struct {
	events      repositories.EventRepository
	connections repositories.ConnectionRepository
	logs        repositories.SyncLogRepository
	providers   provider.Factory
	logger      *slog.Logger
}

func NewCalendarService(
	events repositories.EventRepository,
	connections repositories.ConnectionRepository,
	logs repositories.SyncLogRepository,
	providers provider.Factory,
	logger *slog.Logger,
) *CalendarService {
	return &CalendarService{
		events:      events,
		connections: connections,
		logs:        logs,
		providers:   providers,
		logger:      logger,
	}
}

func (s *CalendarService) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if event.Title == "" {
		return errors.New("event title is required")
	}
	if event.Category == "" {
		event.Category = models.CategoryOther
	}
	event.ProviderEventID = nil
	event.Etag = nil
	event.SyncStatus = models.SyncStatusLocal

	if err := s.events.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *CalendarService) GetEvent(ctx context.Context, tenantID, id uuid.UUID) (*models.CalendarEvent, error) {
	return s.events.GetByID(ctx, tenantID, id)
}

func (s *CalendarService) ListEvents(ctx context.Context, tenantID uuid.UUID) ([]*models.CalendarEvent, error) {
	return s.events.ListByTenant(ctx, tenantID)
}

// UpdateEvent applies a user edit. The sync linkage is preserved from the
// stored row and the status moves to pending so the next pass pushes it;
// events never pushed stay local.
func (s *CalendarService) UpdateEvent(ctx context.Context, event *models.CalendarEvent) error {
	existing, err := s.events.GetByID(ctx, event.TenantID, event.ID)
	if err != nil {
		return err
	}

	event.ProviderEventID = existing.ProviderEventID
	event.Etag = existing.Etag
	if existing.ProviderEventID != nil {
		event.SyncStatus = models.SyncStatusPending
	} else {
		event.SyncStatus = models.SyncStatusLocal
	}

	if err := s.events.Update(ctx, event); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes the event locally and, when it has been pushed,
// from the provider as well. A not-found from the provider means the
// remote copy is already gone and counts as success.
func (s *CalendarService) DeleteEvent(ctx context.Context, tenantID, id uuid.UUID) error {
	event, err := s.events.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if event.ProviderEventID != nil {
		if err := s.deleteRemote(ctx, tenantID, *event.ProviderEventID); err != nil {
			return err
		}
	}

	if err := s.events.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *CalendarService) deleteRemote(ctx context.Context, tenantID uuid.UUID, providerEventID string) error {
	conn, err := s.connections.GetByTenant(ctx, tenantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil // disconnected; nothing remote to clean up
	}
	if err != nil {
		return fmt.Errorf("failed to load calendar connection: %w", err)
	}

	cal, err := s.providers.ForConnection(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to build provider client: %w", err)
	}

	err = cal.Delete(ctx, conn.CalendarID, providerEventID)
	if err != nil && !errors.Is(err, provider.ErrNotFound) {
		return fmt.Errorf("failed to delete provider event: %w", err)
	}
	return nil
}

// Connect stores the tenant's calendar connection after the OAuth flow.
func (s *CalendarService) Connect(ctx context.Context, conn *models.CalendarConnection) error {
	_, err := s.connections.GetByTenant(ctx, conn.TenantID)
	if err == nil {
		return ErrAlreadyConnected
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check calendar connection: %w", err)
	}

	conn.SyncEnabled = true
	if err := s.connections.Create(ctx, conn); err != nil {
		return fmt.Errorf("failed to create calendar connection: %w", err)
	}
	return nil
}

// Disconnect drops the connection and unlinks every event from the
// provider, so a later reconnect starts from a clean first sync.
func (s *CalendarService) Disconnect(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.connections.Delete(ctx, tenantID); err != nil {
		return err
	}
	if err := s.events.ClearProviderLinks(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to clear provider links: %w", err)
	}
	return nil
}

func (s *CalendarService) SyncHistory(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.SyncLogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.logs.ListByTenant(ctx, tenantID, limit)
}
