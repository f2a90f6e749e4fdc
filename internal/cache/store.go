// Package cache provides the key-value storage abstraction shared by the
// response cache and the quota ledger, with Redis-backed and in-process
// implementations selected at startup. Both implementations expose the same
// small primitive set (get, set-with-TTL, delete, atomic increment, expire,
// key scan) so any backend offering those primitives is substitutable.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the primitive key-value contract. Implementations must be safe for
// concurrent use. Incr must be atomic at the storage layer; callers rely on it
// for quota counting under concurrent requests.
type Store interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key. A ttl of zero stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// Incr atomically increments the integer stored at key (absent key
	// counts as zero) and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets or resets the TTL on an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Keys returns the keys matching a glob-style pattern. Intended for
	// operational tooling, not hot paths.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
