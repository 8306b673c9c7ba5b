package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	catalogKeyPrefix = "catalog:"
	scanBatch        = 100
)

// CatalogCache implements repository.CatalogCache using Redis.
type CatalogCache struct {
	client redis.UniversalClient
}

// NewCatalogCache creates a new Redis-backed catalog cache.
func NewCatalogCache(client redis.UniversalClient) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get decodes the cached value into dst.
func (c *CatalogCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get catalog %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal catalog %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for ttl.
func (c *CatalogCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal catalog %s: %w", key, err)
	}

	if err := c.client.Set(ctx, catalogKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every key under prefix using SCAN so the server is never
// blocked by a KEYS call.
func (c *CatalogCache) Invalidate(ctx context.Context, prefix string) (int, error) {
	pattern := catalogKeyPrefix + prefix + "*"
	removed := 0

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan catalog: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del catalog: %w", err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
