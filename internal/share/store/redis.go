// Package store holds the redis-backed resolution cache for share tokens.
// The cache is a hint only; callers re-validate the mapping against the
// list store before serving anything.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	shareTokenKeyPrefix = "share:token:"

	// resolveCacheTTL bounds staleness even if an invalidation is missed.
	resolveCacheTTL = 15 * time.Minute
)

// RedisResolveCache maps share tokens to list IDs.
type RedisResolveCache struct {
	client *redis.Client
	logger *slog.Logger
}

type RedisResolveCacheOption func(*RedisResolveCache)

func WithLogger(logger *slog.Logger) RedisResolveCacheOption {
	return func(c *RedisResolveCache) { c.logger = logger }
}

func NewRedisResolveCache(client *redis.Client, opts ...RedisResolveCacheOption) *RedisResolveCache {
	c := &RedisResolveCache{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GetListID returns the cached list ID for a token, if any. Cache errors are
// treated as misses; the caller always has the store to fall back on.
func (c *RedisResolveCache) GetListID(ctx context.Context, token string) (int64, bool) {
	val, err := c.client.Get(ctx, shareTokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "share cache read failed", "error", err)
		return 0, false
	}
	listID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return listID, true
}

func (c *RedisResolveCache) SetListID(ctx context.Context, token string, listID int64) {
	key := shareTokenKeyPrefix + token
	if err := c.client.Set(ctx, key, strconv.FormatInt(listID, 10), resolveCacheTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "share cache write failed", "error", err)
	}
}

func (c *RedisResolveCache) Invalidate(ctx context.Context, token string) {
	if err := c.client.Del(ctx, shareTokenKeyPrefix+token).Err(); err != nil {
		c.logger.WarnContext(ctx, "share cache invalidation failed", "error", err)
	}
}
