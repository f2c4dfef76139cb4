// Package cache keeps resolved actor profiles in Redis so that each
// authenticated request does not hit the profile table.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/sentinel"
)

const keyPrefix = "censusdesk:profile:"

// DefaultTTL bounds how long a role or territory change can go unnoticed
// when invalidation is missed.
const DefaultTTL = 5 * time.Minute

// RedisCache stores profiles as JSON with TTL eviction.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns sentinel.ErrCacheMiss when nothing is cached for actorID.
func (c *RedisCache) Get(ctx context.Context, actorID id.ActorID) (*models.Profile, error) {
	data, err := c.client.Get(ctx, key(actorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrCacheMiss
		}
		return nil, fmt.Errorf("get profile cache: %w", err)
	}
	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile cache: %w", err)
	}
	return &p, nil
}

func (c *RedisCache) Set(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile cache: %w", err)
	}
	if err := c.client.Set(ctx, key(p.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("save profile cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, actorID id.ActorID) error {
	if err := c.client.Del(ctx, key(actorID)).Err(); err != nil {
		return fmt.Errorf("invalidate profile cache: %w", err)
	}
	return nil
}

func key(actorID id.ActorID) string {
	return keyPrefix + actorID.String()
}
