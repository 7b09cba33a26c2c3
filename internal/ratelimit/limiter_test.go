package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/cache"
	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
)

func testLimiterConfig() config.RateLimit {
	return config.RateLimit{
		General:  config.Bucket{Max: 100, Window: time.Minute},
		Login:    config.Bucket{Max: 3, Window: 15 * time.Minute, Lockout: 15 * time.Minute},
		Register: config.Bucket{Max: 2, Window: time.Hour},
		PasswordReset: config.Bucket{
			Max:    3,
			Window: time.Hour,
		},
		API: config.Bucket{Max: 5, Window: time.Minute},
	}
}

func newTestLimiter() (*Limiter, *cache.MemoryCache) {
	memory := cache.NewMemoryCache()
	return NewLimiter(testLimiterConfig(), memory, logger.NewLogger("test")), memory
}

// failingCache errors on every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, error) {
	return "", errors.New("cache down")
}
func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}
func (failingCache) Del(context.Context, ...string) error { return errors.New("cache down") }
func (failingCache) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("cache down")
}
func (failingCache) Expire(context.Context, string, time.Duration) error {
	return errors.New("cache down")
}
func (failingCache) TTL(context.Context, string) (time.Duration, error) {
	return 0, errors.New("cache down")
}
func (failingCache) Exists(context.Context, string) (bool, error) {
	return false, errors.New("cache down")
}

func TestAttempt_AllowsUpToMax(t *testing.T) {
	limiter, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.1")
		if !decision.Allowed {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
		if decision.Remaining != 5-(i+1) {
			t.Errorf("attempt %d: expected remaining %d, got %d", i+1, 5-(i+1), decision.Remaining)
		}
	}

	decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.1")
	if decision.Allowed {
		t.Fatal("expected denial past the limit")
	}
	if decision.RetryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %v", decision.RetryAfter)
	}
}

func TestAttempt_DenialDoesNotGrowCounter(t *testing.T) {
	limiter, memory := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		limiter.Attempt(ctx, BucketAPI, "10.0.0.2")
	}

	value, err := memory.Get(ctx, "ratelimit:api:10.0.0.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "5" {
		t.Errorf("expected counter pinned at 5, got %s", value)
	}
}

func TestAttempt_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.Attempt(ctx, BucketAPI, "10.0.0.3")
	}

	if decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.3"); decision.Allowed {
		t.Fatal("expected first key to be denied")
	}
	if decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.4"); !decision.Allowed {
		t.Fatal("expected second key to be allowed")
	}
}

func TestAttempt_LockoutEscalation(t *testing.T) {
	limiter, memory := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if decision := limiter.Attempt(ctx, BucketLogin, "john"); !decision.Allowed {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
	}

	decision := limiter.Attempt(ctx, BucketLogin, "john")
	if decision.Allowed {
		t.Fatal("expected denial with lockout")
	}
	if decision.RetryAfter != 15*time.Minute {
		t.Errorf("expected 15m retry-after, got %v", decision.RetryAfter)
	}

	locked, err := memory.Exists(ctx, "lockout:login:john")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locked {
		t.Error("expected lockout marker to be set")
	}
}

func TestAttempt_LockoutOutlivesCounterWindow(t *testing.T) {
	memory := cache.NewMemoryCache()
	now := time.Now()
	memory.SetClock(func() time.Time { return now })

	configs := testLimiterConfig()
	configs.Login = config.Bucket{Max: 1, Window: time.Minute, Lockout: time.Hour}
	limiter := NewLimiter(configs, memory, logger.NewLogger("test"))
	ctx := context.Background()

	limiter.Attempt(ctx, BucketLogin, "john")
	limiter.Attempt(ctx, BucketLogin, "john") // exhausts the budget, plants the lockout

	// counter window passes, lockout TTL has not
	now = now.Add(2 * time.Minute)

	decision := limiter.Attempt(ctx, BucketLogin, "john")
	if decision.Allowed {
		t.Fatal("expected lockout to hold after the counter window expired")
	}
}

func TestAllowed_DoesNotConsume(t *testing.T) {
	limiter, memory := newTestLimiter()
	ctx := context.Background()

	limiter.Attempt(ctx, BucketAPI, "10.0.0.5")

	for i := 0; i < 10; i++ {
		if !limiter.Allowed(ctx, BucketAPI, "10.0.0.5") {
			t.Fatal("expected allowed")
		}
	}

	value, err := memory.Get(ctx, "ratelimit:api:10.0.0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "1" {
		t.Errorf("expected counter untouched at 1, got %s", value)
	}
}

func TestReset_RestoresBudget(t *testing.T) {
	limiter, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limiter.Attempt(ctx, BucketAPI, "10.0.0.6")
	}
	if limiter.Allowed(ctx, BucketAPI, "10.0.0.6") {
		t.Fatal("expected exhausted budget")
	}

	if err := limiter.Reset(ctx, BucketAPI, "10.0.0.6"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limiter.Allowed(ctx, BucketAPI, "10.0.0.6") {
		t.Fatal("expected budget restored after reset")
	}
}

func TestClear_RemovesLockout(t *testing.T) {
	limiter, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		limiter.Attempt(ctx, BucketLogin, "john")
	}
	if limiter.Allowed(ctx, BucketLogin, "john") {
		t.Fatal("expected lockout to deny")
	}

	if err := limiter.Clear(ctx, BucketLogin, "john"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limiter.Allowed(ctx, BucketLogin, "john") {
		t.Fatal("expected budget restored after clear")
	}
}

// flakyExpireCache delegates to a MemoryCache but fails the next failNext
// Expire calls.
type flakyExpireCache struct {
	*cache.MemoryCache
	failNext int
}

func (c *flakyExpireCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if c.failNext > 0 {
		c.failNext--
		return errors.New("expire failed")
	}
	return c.MemoryCache.Expire(ctx, key, ttl)
}

func TestAttempt_ReArmsWindowAfterFailedExpire(t *testing.T) {
	memory := cache.NewMemoryCache()
	flaky := &flakyExpireCache{MemoryCache: memory, failNext: 1}
	limiter := NewLimiter(testLimiterConfig(), flaky, logger.NewLogger("test"))
	ctx := context.Background()

	limiter.Attempt(ctx, BucketAPI, "10.0.0.7") // Expire fails, counter persistent
	limiter.Attempt(ctx, BucketAPI, "10.0.0.7")

	ttl, err := memory.TTL(ctx, "ratelimit:api:10.0.0.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl <= 0 {
		t.Fatal("expected the second attempt to re-arm the counter window")
	}
}

func TestAttempt_ExpiredWindowUnblocksDespiteFailedExpires(t *testing.T) {
	memory := cache.NewMemoryCache()
	now := time.Now()
	memory.SetClock(func() time.Time { return now })

	// every Expire during the filling phase fails, so the counter reaches
	// its limit with no TTL at all
	flaky := &flakyExpireCache{MemoryCache: memory, failNext: 5}
	limiter := NewLimiter(testLimiterConfig(), flaky, logger.NewLogger("test"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.Attempt(ctx, BucketAPI, "10.0.0.8")
	}

	decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.8")
	if decision.Allowed {
		t.Fatal("expected denial at the limit")
	}

	now = now.Add(2 * time.Minute)

	if decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.8"); !decision.Allowed {
		t.Fatal("expected the key to unblock once the window passed")
	}
}

func TestSetLockout_DeniesUntilCleared(t *testing.T) {
	limiter, _ := newTestLimiter()
	ctx := context.Background()

	if limiter.LockedOut(ctx, BucketAPI, "10.0.0.9") {
		t.Fatal("expected no lockout initially")
	}

	if err := limiter.SetLockout(ctx, BucketAPI, "10.0.0.9", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limiter.LockedOut(ctx, BucketAPI, "10.0.0.9") {
		t.Fatal("expected lockout marker to be visible")
	}
	if decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.9"); decision.Allowed {
		t.Fatal("expected lockout to deny attempts")
	}

	if err := limiter.ClearLockout(ctx, BucketAPI, "10.0.0.9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limiter.LockedOut(ctx, BucketAPI, "10.0.0.9") {
		t.Fatal("expected lockout cleared")
	}
	if decision := limiter.Attempt(ctx, BucketAPI, "10.0.0.9"); !decision.Allowed {
		t.Fatal("expected attempts allowed after clear")
	}
}

func TestAttempt_FailsOpenOnCacheErrors(t *testing.T) {
	limiter := NewLimiter(testLimiterConfig(), failingCache{}, logger.NewLogger("test"))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if decision := limiter.Attempt(ctx, BucketLogin, "john"); !decision.Allowed {
			t.Fatal("expected fail-open when the cache is unreachable")
		}
	}
}

func TestAttempt_UnknownBucketAllows(t *testing.T) {
	limiter, _ := newTestLimiter()

	if decision := limiter.Attempt(context.Background(), "no-such-bucket", "x"); !decision.Allowed {
		t.Fatal("expected unknown bucket to allow")
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ip", "10.0.0.1", "10.0.0.1"},
		{"ipv6 separators", "2001:db8::1", "2001.db8..1"},
		{"email", "john@example.com", "johnexample.com"},
		{"hostile input dropped", "a; DROP TABLE users--", "aDROPTABLEusers--"},
		{"empty", "", "unknown"},
		{"all invalid", "!@#$%", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeKey(tt.in); got != tt.want {
				t.Errorf("sanitizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeKey_BoundsLength(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	got := sanitizeKey(string(long))
	if len(got) != maxKeyLength {
		t.Errorf("expected length %d, got %d", maxKeyLength, len(got))
	}
}
