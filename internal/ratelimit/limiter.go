// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package ratelimit implements fixed-window request throttling with
// escalation to lockouts. Counters and lockout markers live in the shared
// cache, so limits hold across server instances.
//
// The limiter fails open: when the cache is unreachable a request is allowed
// and the error is logged. Availability of the login and reset flows is
// worth more than a throttle that depends on cache uptime.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/cache"
	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
)

// Bucket names understood by the limiter. Each maps to its own counter
// configuration.
const (
	BucketGeneral       = "general"
	BucketLogin         = "login"
	BucketRegister      = "register"
	BucketPasswordReset = "password_reset"
	BucketAPI           = "api"
)

// maxKeyLength bounds sanitized keys so hostile inputs cannot grow cache
// keys without limit.
const maxKeyLength = 64

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter throttles request sources per named bucket.
type Limiter struct {
	cache   cache.Cache
	logger  *logger.Logger
	buckets map[string]config.Bucket
}

// NewLimiter constructs a [Limiter] from the named bucket configs.
func NewLimiter(configs config.RateLimit, cache cache.Cache, log *logger.Logger) *Limiter {
	log.Debug().Msg("creating rate limiter")
	return &Limiter{
		cache:  cache,
		logger: log,
		buckets: map[string]config.Bucket{
			BucketGeneral:       configs.General,
			BucketLogin:         configs.Login,
			BucketRegister:      configs.Register,
			BucketPasswordReset: configs.PasswordReset,
			BucketAPI:           configs.API,
		},
	}
}

// Buckets returns the configured bucket names.
func (l *Limiter) Buckets() []string {
	names := make([]string, 0, len(l.buckets))
	for name := range l.buckets {
		names = append(names, name)
	}
	return names
}

// Attempt consumes one unit of the key's budget in the bucket and reports
// the decision. Once the key is at its limit, further attempts are denied
// without growing the counter, so the window expiry is never pushed back by
// the very traffic it is blocking.
//
// Exhausting the budget of a bucket with a lockout duration plants a lockout
// marker whose TTL runs independently of the counter window.
//
// An unknown bucket name and any cache failure both allow the request.
func (l *Limiter) Attempt(ctx context.Context, bucket, key string) Decision {
	log := logger.FromContext(ctx)

	bucketConfig, ok := l.buckets[bucket]
	if !ok {
		log.Warn().Str("bucket", bucket).Msg("unknown rate limit bucket")
		return Decision{Allowed: true}
	}

	sanitized := sanitizeKey(key)
	counterKey := counterKey(bucket, sanitized)

	if decision, locked := l.checkLockout(ctx, bucket, sanitized); locked {
		return decision
	}

	count, err := l.currentCount(ctx, counterKey)
	if err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Msg("rate limit check failed, allowing request")
		return Decision{Allowed: true, Remaining: bucketConfig.Max}
	}

	if count >= bucketConfig.Max {
		retryAfter := l.deny(ctx, bucket, sanitized, bucketConfig)
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}

	newCount, err := l.cache.Incr(ctx, counterKey)
	if err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Msg("rate limit increment failed, allowing request")
		return Decision{Allowed: true, Remaining: bucketConfig.Max}
	}
	l.armWindow(ctx, bucket, counterKey, newCount, bucketConfig.Window)

	remaining := bucketConfig.Max - int(newCount)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// Allowed reports whether the key still has budget in the bucket without
// consuming any of it.
func (l *Limiter) Allowed(ctx context.Context, bucket, key string) bool {
	log := logger.FromContext(ctx)

	bucketConfig, ok := l.buckets[bucket]
	if !ok {
		return true
	}

	sanitized := sanitizeKey(key)

	if _, locked := l.checkLockout(ctx, bucket, sanitized); locked {
		return false
	}

	count, err := l.currentCount(ctx, counterKey(bucket, sanitized))
	if err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Msg("rate limit read failed, allowing request")
		return true
	}

	return count < bucketConfig.Max
}

// Reset clears the key's counter in the bucket, restoring its full budget.
// Lockout markers are untouched; see ClearLockout.
func (l *Limiter) Reset(ctx context.Context, bucket, key string) error {
	return l.cache.Del(ctx, counterKey(bucket, sanitizeKey(key)))
}

// ClearLockout removes the key's lockout marker in the bucket.
func (l *Limiter) ClearLockout(ctx context.Context, bucket, key string) error {
	return l.cache.Del(ctx, lockoutKey(bucket, sanitizeKey(key)))
}

// Clear removes both the counter and the lockout marker for the key.
// Operators use it to unblock a source immediately.
func (l *Limiter) Clear(ctx context.Context, bucket, key string) error {
	sanitized := sanitizeKey(key)
	return l.cache.Del(ctx, counterKey(bucket, sanitized), lockoutKey(bucket, sanitized))
}

// armWindow makes sure the counter carries the window TTL. A fresh counter
// gets it directly; on later increments a zero TTL means an earlier Expire
// call failed and left the counter persistent, so it is re-armed here. The
// counter must never outlive its window, otherwise the key stays denied
// after the window should have passed.
func (l *Limiter) armWindow(ctx context.Context, bucket, counterKey string, count int64, window time.Duration) {
	log := logger.FromContext(ctx)

	if count > 1 {
		ttl, err := l.cache.TTL(ctx, counterKey)
		if err != nil || ttl > 0 {
			return
		}
	}
	if err := l.cache.Expire(ctx, counterKey, window); err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Msg("rate limit window expiry failed")
	}
}

// SetLockout plants a lockout marker for the key in the bucket, denying it
// for the given duration regardless of its counter state. [Attempt] applies
// the configured escalation itself; this is for callers with their own
// escalation rules.
func (l *Limiter) SetLockout(ctx context.Context, bucket, key string, duration time.Duration) error {
	return l.cache.Set(ctx, lockoutKey(bucket, sanitizeKey(key)), "1", duration)
}

// LockedOut reports whether the key currently carries a lockout marker in
// the bucket. Cache errors count as not locked.
func (l *Limiter) LockedOut(ctx context.Context, bucket, key string) bool {
	_, locked := l.checkLockout(ctx, bucket, sanitizeKey(key))
	return locked
}

// checkLockout reports whether the key is locked out, with the remaining
// lockout as RetryAfter. Cache errors count as not locked.
func (l *Limiter) checkLockout(ctx context.Context, bucket, sanitized string) (Decision, bool) {
	key := lockoutKey(bucket, sanitized)

	exists, err := l.cache.Exists(ctx, key)
	if err != nil || !exists {
		return Decision{}, false
	}

	retryAfter, err := l.cache.TTL(ctx, key)
	if err != nil {
		retryAfter = 0
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}, true
}

// deny plants a lockout marker when the bucket escalates, and returns how
// long the caller should wait.
func (l *Limiter) deny(ctx context.Context, bucket, sanitized string, bucketConfig config.Bucket) time.Duration {
	log := logger.FromContext(ctx)

	if bucketConfig.Lockout > 0 {
		if err := l.cache.Set(ctx, lockoutKey(bucket, sanitized), "1", bucketConfig.Lockout); err != nil {
			log.Warn().Err(err).Str("bucket", bucket).Msg("rate limit lockout write failed")
		}
		return bucketConfig.Lockout
	}

	retryAfter, err := l.cache.TTL(ctx, counterKey(bucket, sanitized))
	if err != nil {
		return bucketConfig.Window
	}
	if retryAfter <= 0 {
		// Counter without expiry: re-arm it so the denial ends with the
		// window instead of lasting until an operator clears the key.
		if err := l.cache.Expire(ctx, counterKey(bucket, sanitized), bucketConfig.Window); err != nil {
			log.Warn().Err(err).Str("bucket", bucket).Msg("rate limit window expiry failed")
		}
		return bucketConfig.Window
	}
	return retryAfter
}

func (l *Limiter) currentCount(ctx context.Context, key string) (int, error) {
	value, err := l.cache.Get(ctx, key)
	if err == cache.ErrCacheMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func counterKey(bucket, sanitized string) string {
	return "ratelimit:" + bucket + ":" + sanitized
}

func lockoutKey(bucket, sanitized string) string {
	return "lockout:" + bucket + ":" + sanitized
}

// sanitizeKey reduces a caller-supplied key (IP, username, email) to a safe
// cache key fragment: only letters, digits, dots, underscores, and hyphens
// survive, length is capped, and an empty result becomes "unknown" so the
// key never collides with a structurally different one.
func sanitizeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key) && len(out) < maxKeyLength; i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		case c == '.' || c == '_' || c == '-':
			out = append(out, c)
		case c == ':':
			// IPv6 addresses keep their structure with a safe separator
			out = append(out, '.')
		}
	}
	if len(out) == 0 {
		return "unknown"
	}
	return string(out)
}
