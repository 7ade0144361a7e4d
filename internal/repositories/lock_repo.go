package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const syncLockPrefix = "synclock:"

// RedisSyncLockRepository implements the per-tenant advisory lock with a
// SET NX + TTL. The TTL doubles as the stale-lock ceiling: if a pass dies
// holding the lock, the next pass may proceed once the TTL lapses.
type RedisSyncLockRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSyncLockRepository(client *redis.Client, ttl time.Duration) *RedisSyncLockRepository {
	return &RedisSyncLockRepository{client: client, ttl: ttl}
}

func (r *RedisSyncLockRepository) Acquire(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	ok, err := r.client.SetNX(ctx, syncLockKey(tenantID), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	return ok, nil
}

func (r *RedisSyncLockRepository) Release(ctx context.Context, tenantID uuid.UUID) error {
	if err := r.client.Del(ctx, syncLockKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

func syncLockKey(tenantID uuid.UUID) string {
	return syncLockPrefix + tenantID.String()
}
