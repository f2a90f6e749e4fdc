package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ResponseCache wraps a Store with a JSON codec and the degradation policy
// the gateway relies on: a storage outage must never abort the caller's
// primary flow. Get degrades to a miss and Set to a logged no-op; no storage
// error ever crosses this boundary.
type ResponseCache struct {
	store Store
	log   zerolog.Logger
}

// NewResponseCache builds a ResponseCache over store.
func NewResponseCache(store Store, log zerolog.Logger) *ResponseCache {
	return &ResponseCache{store: store, log: log}
}

// Get reads key into dst and reports whether it was a hit. Absence, expiry,
// storage failure, and payload decode failure are all misses; only genuine
// storage failures are logged.
func (c *ResponseCache) Get(ctx context.Context, key string, dst any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, treating as miss")
		return false
	}
	return true
}

// Set writes v under key with the given TTL. Failures are logged and dropped.
func (c *ResponseCache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache value unencodable, skipping write")
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed, continuing without write")
	}
}
