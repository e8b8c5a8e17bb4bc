package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "egile:resolve:"

// RedisCache shares resolved mentions across assistant instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached product id for a mention, if present.
func (c *RedisCache) Get(ctx context.Context, mention string) (string, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+mention).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Backend trouble reads as a miss; the resolver falls through.
		return "", false
	}
	return val, true
}

// Set records a resolved mention with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, mention, productID string) {
	_ = c.client.Set(ctx, redisKeyPrefix+mention, productID, c.ttl).Err()
}

// Close releases the client's connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
