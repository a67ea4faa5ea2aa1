package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedLister caches List results in Redis. Redis failures are logged and
// fall through to the wrapped lister.
type CachedLister struct {
	next      Lister
	client    *redis.Client
	namespace string
	ttl       time.Duration
	log       *zap.Logger
}

// NewCachedLister wraps next. namespace separates buckets sharing one Redis.
func NewCachedLister(next Lister, client *redis.Client, namespace string, ttl time.Duration, log *zap.Logger) *CachedLister {
	return &CachedLister{
		next:      next,
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		log:       log,
	}
}

func (c *CachedLister) cacheKey(prefix string) string {
	return fmt.Sprintf("listing:%s:%s", c.namespace, prefix)
}

// List returns the cached keys for prefix, filling the cache on a miss.
func (c *CachedLister) List(ctx context.Context, prefix string) ([]string, error) {
	key := c.cacheKey(prefix)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var keys []string
		if err := json.Unmarshal(data, &keys); err == nil {
			return keys, nil
		}
		c.log.Warn("listing cache: corrupt entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("listing cache: get failed", zap.String("key", key), zap.Error(err))
	}

	keys, err := c.next.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(keys); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("listing cache: set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return keys, nil
}

// Invalidate drops the cached listing for prefix.
func (c *CachedLister) Invalidate(ctx context.Context, prefix string) {
	if err := c.client.Del(ctx, c.cacheKey(prefix)).Err(); err != nil {
		c.log.Warn("listing cache: invalidate failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// NewRedisClient parses a redis:// URL and checks connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
