// Package scheduler runs the periodic background reconciliation pass over
// every sync-enabled calendar connection.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
	"github.com/GabeCabrera/aisle-board-sub002/internal/services"
)

type Scheduler struct {
	connections repositories.ConnectionRepository
	sync        *services.SyncService
	interval    time.Duration
	parallelism int
	logger      *slog.Logger

	cron *cron.Cron
}

func New(
	connections repositories.ConnectionRepository,
	sync *services.SyncService,
	interval time.Duration,
	parallelism int,
	logger *slog.Logger,
) *Scheduler {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Scheduler{
		connections: connections,
		sync:        sync,
		interval:    interval,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Start registers the recurring pass and kicks off the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()

	schedule := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(schedule, func() { s.runAll(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule sync pass: %w", err)
	}

	s.cron.Start()
	s.logger.Info("sync scheduler started", "interval", s.interval, "parallelism", s.parallelism)
	return nil
}

// Stop halts the cron loop and waits for in-flight passes to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// runAll syncs every sync-enabled tenant, at most parallelism at a time.
// A failing tenant never stops the others; failures land in that tenant's
// own sync log.
func (s *Scheduler) runAll(ctx context.Context) {
	conns, err := s.connections.ListSyncEnabled(ctx)
	if err != nil {
		s.logger.Error("failed to list sync-enabled connections", "error", err)
		return
	}
	if len(conns) == 0 {
		return
	}

	g := &errgroup.Group{}
	g.SetLimit(s.parallelism)

	for _, conn := range conns {
		conn := conn
		g.Go(func() error {
			result, err := s.sync.Synchronize(ctx, conn.TenantID)
			switch {
			case errors.Is(err, services.ErrSyncInProgress):
				s.logger.Debug("skipping tenant, sync already running", "tenant_id", conn.TenantID)
			case errors.Is(err, services.ErrNotConnected):
				// Connection disabled between listing and syncing.
			case err != nil:
				s.logger.Error("scheduled sync failed to start", "tenant_id", conn.TenantID, "error", err)
			case !result.Success:
				s.logger.Warn("scheduled sync ended with errors", "tenant_id", conn.TenantID, "error", result.Error)
			}
			return nil
		})
	}

	g.Wait()
}
