// Package cache provides the shared key-value store used for sessions,
// rate-limit counters, and lockout markers. The production implementation
// is Redis; consumers depend on the [Cache] interface so tests can swap in
// an in-memory fake.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the keyspace contract shared by the session and rate-limit
// layers. All TTLs are absolute: Set with a zero ttl stores the key without
// expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// Incr atomically increments the integer value at key, creating it at 1.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets the key's TTL without touching its value.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL reports the key's remaining lifetime. Keys without expiry or
	// missing keys report a zero duration.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Exists(ctx context.Context, key string) (bool, error)
}
