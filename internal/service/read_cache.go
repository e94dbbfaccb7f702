package service

import (
	"context"
	"time"

	"cloudnative/fitapp/internal/cache"

	"github.com/sirupsen/logrus"
)

// readCache wraps the cache so that its failures never reach callers:
// a failing Get is a miss, failing Set and Invalidate calls are only logged.
type readCache struct {
	cache cache.Cache
	log   logrus.FieldLogger
}

func cachedRead[T any](ctx context.Context, c readCache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var cached T
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if hit {
		return cached, nil
	}

	fresh, err := fetch()
	if err != nil {
		return fresh, err
	}
	if err := c.cache.Set(ctx, key, fresh, ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return fresh, nil
}

func (c readCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.cache.Invalidate(ctx, keys...); err != nil {
		c.log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}
