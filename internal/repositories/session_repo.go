package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

const sessionPrefix = "session:"
const tenantSessionsPrefix = "tenant:%s:sessions"

type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func (r *RedisSessionRepository) Create(ctx context.Context, session *models.Session) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	key := sessionPrefix + session.ID

	if err := r.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	// Secondary index so DeleteAllForTenant can find every session.
	tenantKey := fmt.Sprintf(tenantSessionsPrefix, session.TenantID)
	if err := r.client.SAdd(ctx, tenantKey, session.ID).Err(); err != nil {
		return fmt.Errorf("failed to add session to tenant sessions: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	jsonData, err := r.client.Get(ctx, sessionPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	tenantKey := fmt.Sprintf(tenantSessionsPrefix, session.TenantID)
	if err := r.client.SRem(ctx, tenantKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove session from tenant sessions: %w", err)
	}

	if err := r.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) DeleteAllForTenant(ctx context.Context, tenantID uuid.UUID) error {
	tenantKey := fmt.Sprintf(tenantSessionsPrefix, tenantID)
	sessionIDs, err := r.client.SMembers(ctx, tenantKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get tenant sessions: %w", err)
	}

	for _, id := range sessionIDs {
		if err := r.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to delete session %s: %w", id, err)
		}
	}
	return nil
}
