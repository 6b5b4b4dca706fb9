package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedKV puts a redis read cache in front of a durable KV. Writes go to the
// backing store first; the cache entry is refreshed afterwards.
type CachedKV struct {
	logger  zerolog.Logger
	backing KV
	cache   *redis.Client
	ttl     time.Duration
	prefix  string
}

func NewCachedKV(logger zerolog.Logger, backing KV, cache *redis.Client, ttl time.Duration) *CachedKV {
	return &CachedKV{logger: logger, backing: backing, cache: cache, ttl: ttl, prefix: "kv:"}
}

func (c *CachedKV) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	if c.cache != nil {
		b, err := c.cache.Get(ctx, c.prefix+key).Bytes()
		if err == nil {
			return b, true, nil
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("kv cache read failed")
		}
	}
	b, ok, err := c.backing.GetItem(ctx, key)
	if err != nil || !ok {
		return b, ok, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("kv cache fill failed")
		}
	}
	return b, true, nil
}

func (c *CachedKV) SetItem(ctx context.Context, key string, value []byte) error {
	if err := c.backing.SetItem(ctx, key, value); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("kv cache refresh failed")
			_ = c.cache.Del(ctx, c.prefix+key).Err()
		}
	}
	return nil
}
