// Package cache provides TTL caching of JSON-encodable API responses.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/metrics"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

// Cache stores values under string keys for a limited time.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Remember returns the cached value for key or computes, stores and
// returns it. Cache errors are logged and never fail the call. When keep
// is non-nil, results it rejects are returned but not stored.
func Remember[T any](ctx context.Context, c Cache, rec *metrics.Recorder, key string, ttl time.Duration,
	load func(ctx context.Context) (T, error), keep func(T) bool) (T, error) {
	if c == nil {
		return load(ctx)
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		rec.RecordCacheLookup(true)
		return cached, nil
	}
	rec.RecordCacheLookup(false)
	if !errors.Is(err, ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if keep != nil && !keep(value) {
		return value, nil
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return value, nil
}
