// Package cache caches share link lookups, which sit on the public path of
// every shared view and download.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	models "dataroom/internal/domain/models/dataroom"
)

// ShareCache stores resolved share links by token. A miss is never an error:
// callers fall back to the repository.
type ShareCache interface {
	Get(ctx context.Context, token string) (*models.ShareLink, bool)
	Set(ctx context.Context, link *models.ShareLink)
	Invalidate(ctx context.Context, token string)
}

// NoopShareCache is used when Redis is not configured
type NoopShareCache struct{}

func (NoopShareCache) Get(context.Context, string) (*models.ShareLink, bool) { return nil, false }
func (NoopShareCache) Set(context.Context, *models.ShareLink)                {}
func (NoopShareCache) Invalidate(context.Context, string)                    {}

// RedisShareCache keeps share links as JSON with a TTL
type RedisShareCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient parses url and checks the server is reachable
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func NewRedisShareCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisShareCache {
	return &RedisShareCache{rdb: rdb, ttl: ttl, logger: logger}
}

func shareKey(token string) string {
	return "share_link:" + token
}

// Get returns the cached link. Redis errors degrade to a miss.
func (c *RedisShareCache) Get(ctx context.Context, token string) (*models.ShareLink, bool) {
	val, err := c.rdb.Get(ctx, shareKey(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("share cache get failed", "error", err)
		}
		return nil, false
	}

	var link models.ShareLink
	if err := json.Unmarshal(val, &link); err != nil {
		c.logger.Warn("share cache entry corrupt", "error", err)
		return nil, false
	}
	return &link, true
}

func (c *RedisShareCache) Set(ctx context.Context, link *models.ShareLink) {
	data, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, shareKey(link.Token), data, c.ttl).Err(); err != nil {
		c.logger.Warn("share cache set failed", "error", err)
	}
}

func (c *RedisShareCache) Invalidate(ctx context.Context, token string) {
	if err := c.rdb.Del(ctx, shareKey(token)).Err(); err != nil {
		c.logger.Warn("share cache invalidate failed", "error", err)
	}
}
