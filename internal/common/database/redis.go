package database

import (
	"context"
	"fmt"
	"time"

	"onboarding-hub/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// AcquireLock takes a best-effort distributed lock with a TTL. Returns true
// when this caller owns the lock.
func (c *RedisClient) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, key, owner, ttl).Result()
}

// releaseLockScript deletes the key only while owner still holds it. The
// compare and delete run as one script so a lock another owner took over
// after TTL expiry cannot be deleted from under them.
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// ReleaseLock drops a lock held by owner. A lock taken over by another owner
// after TTL expiry is left alone.
func (c *RedisClient) ReleaseLock(ctx context.Context, key, owner string) error {
	return releaseLockScript.Run(ctx, c.Client, []string{key}, owner).Err()
}
