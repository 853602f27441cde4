package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

// CachedSource keeps fetched activity in Redis so reruns within TTL skip the
// upstream API. Fetch errors are never cached and Redis errors fall through.
type CachedSource struct {
	next   ports.ActivitySource
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

var _ ports.ActivitySource = (*CachedSource)(nil)

func NewCachedSource(next ports.ActivitySource, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, client: client, ttl: ttl, prefix: "persona:activity", logger: logger}
}

func (c *CachedSource) key(username string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, username, limit)
}

func (c *CachedSource) Fetch(ctx context.Context, username string, limit int) (domain.UserActivity, error) {
	key := c.key(username, limit)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached domain.UserActivity
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.logger.Debug("Activity cache hit", zap.String("username", username))
			return cached, nil
		}
		c.logger.Warn("Discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Activity cache unavailable", zap.Error(err))
	}

	activity, err := c.next.Fetch(ctx, username, limit)
	if err != nil {
		return activity, err
	}

	if payload, err := json.Marshal(activity); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Activity cache write failed", zap.Error(err))
		}
	}
	return activity, nil
}
