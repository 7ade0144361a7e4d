package config

import (
	"errors"
	"os"
	"time"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	RedisURL    string

	JWTSecret string
	JWTExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string

	// SyncInterval is how often the background scheduler runs a pass for
	// every sync-enabled tenant.
	SyncInterval time.Duration
	// SyncLockTTL is the stale-lock ceiling: a pass that holds its lock
	// longer than this is presumed dead and a new pass may start.
	SyncLockTTL time.Duration
	// ProviderTimeout bounds each individual call to the calendar provider.
	ProviderTimeout time.Duration
	// SyncParallelism caps how many tenants the scheduler syncs at once.
	SyncParallelism int
}

func LoadConfig() (*Config, error) {
	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "15m"))
	if err != nil {
		return nil, errors.New("invalid SYNC_INTERVAL format")
	}

	lockTTL, err := time.ParseDuration(getEnv("SYNC_LOCK_TTL", "10m"))
	if err != nil {
		return nil, errors.New("invalid SYNC_LOCK_TTL format")
	}

	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "30s"))
	if err != nil {
		return nil, errors.New("invalid PROVIDER_TIMEOUT format")
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiry:          expiry,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		SyncInterval:       syncInterval,
		SyncLockTTL:        lockTTL,
		ProviderTimeout:    providerTimeout,
		SyncParallelism:    4,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
