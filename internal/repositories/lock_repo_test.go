package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run against a real Redis; set TEST_REDIS_URL to enable,
// e.g. redis://localhost:6379/1
func getTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSyncLockRepository_AcquireIsExclusive(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisSyncLockRepository(client, time.Minute)
	ctx := context.Background()
	tenantID := uuid.New()

	ok, err := repo.Acquire(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, ok, "first acquire should win")

	// ACT: A second pass for the same tenant tries to start
	ok, err = repo.Acquire(ctx, tenantID)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must be rejected while the lock is held")

	// Other tenants are unaffected
	otherTenant := uuid.New()
	ok, err = repo.Acquire(ctx, otherTenant)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Release(ctx, tenantID))
	require.NoError(t, repo.Release(ctx, otherTenant))
}

func TestSyncLockRepository_ReleaseAllowsReacquire(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisSyncLockRepository(client, time.Minute)
	ctx := context.Background()
	tenantID := uuid.New()

	ok, err := repo.Acquire(ctx, tenantID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Release(ctx, tenantID))

	ok, err = repo.Acquire(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, ok, "lock should be free again after release")
	require.NoError(t, repo.Release(ctx, tenantID))
}

// The TTL is the stale-lock ceiling: a crashed pass cannot block its tenant
// past expiry.
func TestSyncLockRepository_ExpiresAfterTTL(t *testing.T) {
	client := getTestRedisClient(t)
	repo := NewRedisSyncLockRepository(client, 50*time.Millisecond)
	ctx := context.Background()
	tenantID := uuid.New()

	ok, err := repo.Acquire(ctx, tenantID)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	ok, err = repo.Acquire(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock should be acquirable")
	require.NoError(t, repo.Release(ctx, tenantID))
}
