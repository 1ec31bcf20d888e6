// Package cache provides a small read-through JSON cache over Redis
// for the hot read endpoints (leaderboard, trending claims).
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. A nil *Cache is valid and misses on
// every lookup, so callers need no enabled/disabled branching.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis using a redis:// URL. Entries expire after ttl.
func New(url string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Cache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

// GetJSON loads and decodes a cached value. Returns false on miss,
// decode failure, or when caching is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("cache: dropping undecodable entry %s: %v", key, err)
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a value under key with the configured TTL. Failures
// are logged and swallowed; the cache is best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("cache: failed to store %s: %v", key, err)
	}
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
