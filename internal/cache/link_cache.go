// Package cache keeps resolved tracking links in Redis so the redirect hot
// path skips PostgreSQL on repeat clicks.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// ErrMiss is returned by Get when the code has no cached entry.
var ErrMiss = errors.New("link cache miss")

// LinkCache is a cache-aside store of tracking links keyed by code.
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewLinkCache creates a link cache with the given entry TTL.
func NewLinkCache(client *redis.Client, ttl time.Duration, log logger.Logger) *LinkCache {
	return &LinkCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (c *LinkCache) key(code string) string {
	return fmt.Sprintf("link:%s", code)
}

// Get fetches a cached link. Returns ErrMiss when the code is absent;
// Redis failures are also reported as a miss so the caller falls through
// to the database.
func (c *LinkCache) Get(ctx context.Context, code string) (*domain.TrackingLink, error) {
	raw, err := c.client.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Redis error reading link cache",
				logger.String("code", code),
				logger.Error(err),
			)
		}
		return nil, ErrMiss
	}

	var link domain.TrackingLink
	if err := json.Unmarshal(raw, &link); err != nil {
		c.log.Warn("Corrupt link cache entry",
			logger.String("code", code),
			logger.Error(err),
		)
		return nil, ErrMiss
	}

	return &link, nil
}

// Set stores a link under its code for the configured TTL. Failures are
// logged and swallowed; the cache is best effort.
func (c *LinkCache) Set(ctx context.Context, link *domain.TrackingLink) {
	raw, err := json.Marshal(link)
	if err != nil {
		c.log.Warn("Failed to encode link for cache",
			logger.String("code", link.Code),
			logger.Error(err),
		)
		return
	}

	if err := c.client.Set(ctx, c.key(link.Code), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Redis error writing link cache",
			logger.String("code", link.Code),
			logger.Error(err),
		)
	}
}

// Invalidate removes a cached link. Called on deactivation so stale active
// entries do not outlive the database row by more than one round trip.
func (c *LinkCache) Invalidate(ctx context.Context, code string) {
	if err := c.client.Del(ctx, c.key(code)).Err(); err != nil {
		c.log.Warn("Redis error invalidating link cache",
			logger.String("code", code),
			logger.Error(err),
		)
	}
}
