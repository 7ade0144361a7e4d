package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/aisleboard")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 10*time.Minute, cfg.SyncLockTTL)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 4, cfg.SyncParallelism)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYNC_INTERVAL", "5m")
	t.Setenv("SYNC_LOCK_TTL", "2m")
	t.Setenv("PROVIDER_TIMEOUT", "10s")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 2*time.Minute, cfg.SyncLockTTL)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{"database url required", "DATABASE_URL"},
		{"redis url required", "REDIS_URL"},
		{"jwt secret required", "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.omit, "")

			_, err := LoadConfig()

			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_INTERVAL", "every-hour")

	_, err := LoadConfig()

	assert.Error(t, err)
}
