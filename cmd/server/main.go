package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/GabeCabrera/aisle-board-sub002/internal/api"
	"github.com/GabeCabrera/aisle-board-sub002/internal/config"
	"github.com/GabeCabrera/aisle-board-sub002/internal/database"
	"github.com/GabeCabrera/aisle-board-sub002/internal/provider"
	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
	"github.com/GabeCabrera/aisle-board-sub002/internal/scheduler"
	"github.com/GabeCabrera/aisle-board-sub002/internal/services"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	defer postgresPool.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	// Repositories
	tenantRepo := repositories.NewPostgresTenantRepository(postgresPool)
	eventRepo := repositories.NewPostgresEventRepository(postgresPool)
	connectionRepo := repositories.NewPostgresConnectionRepository(postgresPool)
	syncLogRepo := repositories.NewPostgresSyncLogRepository(postgresPool)
	lockRepo := repositories.NewRedisSyncLockRepository(redisClient, cfg.SyncLockTTL)
	sessionRepo := repositories.NewRedisSessionRepository(redisClient)

	// Provider + services
	providerFactory := provider.NewGoogleFactory(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.ProviderTimeout, logger)
	authService := services.NewAuthService(tenantRepo, sessionRepo, cfg.JWTSecret, cfg.JWTExpiry)
	calendarService := services.NewCalendarService(eventRepo, connectionRepo, syncLogRepo, providerFactory, logger)
	syncService := services.NewSyncService(eventRepo, connectionRepo, syncLogRepo, lockRepo, providerFactory, services.LocalWins, logger)

	// Background sync scheduler
	sched := scheduler.New(connectionRepo, syncService, cfg.SyncInterval, cfg.SyncParallelism, logger)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// HTTP server
	handler := api.NewHandler(authService, calendarService, syncService)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler.Router(),
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
