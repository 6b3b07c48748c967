package redis

import (
	"context"
	"fmt"

	"github.com/andalize/proptic/common/config"

	"github.com/go-redis/redis/v8"
)

// Client is an alias so callers need not import go-redis directly.
type Client = redis.Client

// NewRedisClient creates a client; it does not dial until first use. Zero
// pool size and dial timeout keep the go-redis defaults.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})
}

// Ping checks connectivity.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close closes the client.
func Close(client *redis.Client) error {
	return client.Close()
}
