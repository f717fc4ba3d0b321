// Package redis caches ranked recommendation lists per owner.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// RecommendationCache implements domain.RecommendationCache on top of Redis.
// Entries expire after TTL so a missed invalidation self-heals.
type RecommendationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New constructs a RecommendationCache with the given client and TTL.
func New(rdb *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{rdb: rdb, ttl: ttl}
}

func key(ownerID string) string {
	return "recommendations:" + ownerID
}

// Get returns the cached sermon ids for an owner; the second return reports
// whether a cached entry existed.
func (c *RecommendationCache) Get(ctx domain.Context, ownerID string) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, key(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("op=reccache.get: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return ids, true, nil
}

// Set stores the ranked ids with the configured TTL.
func (c *RecommendationCache) Set(ctx domain.Context, ownerID string, sermonIDs []string) error {
	raw, err := json.Marshal(sermonIDs)
	if err != nil {
		return fmt.Errorf("op=reccache.set: %w", err)
	}
	if err := c.rdb.Set(ctx, key(ownerID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=reccache.set: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for an owner.
func (c *RecommendationCache) Invalidate(ctx domain.Context, ownerID string) error {
	if err := c.rdb.Del(ctx, key(ownerID)).Err(); err != nil {
		return fmt.Errorf("op=reccache.invalidate: %w", err)
	}
	return nil
}
