package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements [Cache] on top of a Redis connection.
type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisCache connects to Redis using the given configs and verifies the
// connection with a short ping before returning.
func NewRedisCache(ctx context.Context, configs config.Cache, log *logger.Logger) (*RedisCache, error) {
	log.Debug().Str("func", "NewRedisCache").Msgf("connecting to redis at %s", configs.Addr)

	client := redis.NewClient(&redis.Options{
		Addr:     configs.Addr,
		Password: configs.Password,
		DB:       configs.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisCache").Msg("error occured during redis connection check")
		return nil, fmt.Errorf("error occured during redis connection check: %w", err)
	}

	return &RedisCache{client: client, logger: log}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache get %q: %w", key, err)
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr %q: %w", key, err)
	}
	return count, nil
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("cache expire %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache ttl %q: %w", key, err)
	}
	// redis reports -1 (no expiry) and -2 (missing key) as negative durations
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists %q: %w", key, err)
	}
	return n > 0, nil
}

// Ping verifies the Redis connection is alive.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
