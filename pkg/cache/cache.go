package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/concept-graph/pkg/logger"
)

// Cache is a best-effort read cache. Every method degrades to a no-op
// when Redis is unreachable; callers never fail because of the cache.
type Cache struct {
	client *redis.Client
	log    logger.Logger
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis. A nil config (or empty address) produces a
// disabled cache.
func New(cfg *Config, log logger.Logger) *Cache {
	c := &Cache{log: log}
	if cfg == nil || cfg.Addr == "" {
		log.Warn("cache disabled: no redis address configured")
		return c
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return c
}

// Enabled reports whether a Redis connection was configured.
func (c *Cache) Enabled() bool {
	return c.client != nil
}

// GetJSON reads key into dest. Returns false on miss or on any cache
// error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.Warn("cache get failed", logger.String("key", key), logger.Error(err))
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("cache entry corrupt, dropping", logger.String("key", key), logger.Error(err))
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value under key with a TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache set: marshal failed", logger.String("key", key), logger.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", logger.String("key", key), logger.Error(err))
	}
}

// DeleteByPattern removes every key matching pattern using SCAN, so
// large keyspaces are walked incrementally.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) {
	if c.client == nil {
		return
	}

	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.log.Warn("cache scan failed", logger.String("pattern", pattern), logger.Error(err))
			return
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.log.Warn("cache delete failed", logger.String("pattern", pattern), logger.Error(err))
				return
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		c.log.Debug("cache invalidated", logger.String("pattern", pattern), logger.Int("keys", deleted))
	}
}

// InvalidateSubject drops every cached view of one subject.
func (c *Cache) InvalidateSubject(ctx context.Context, subjectID string) {
	c.DeleteByPattern(ctx, fmt.Sprintf("*:subject:%s*", subjectID))
}

// SubjectGraphKey is the cache key for one subject's assembled graph.
func SubjectGraphKey(subjectID string) string {
	return fmt.Sprintf("graph:subject:%s", subjectID)
}

func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
