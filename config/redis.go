package config

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

const (
	envRedisURL = "REDIS_URL"

	defaultRedisURL = "redis://localhost:6379/0"
)

// RedisURL returns the Redis connection URL from REDIS_URL, or the
// local-development default when unset.
func RedisURL() string {
	if url := os.Getenv(envRedisURL); url != "" {
		return url
	}

	return defaultRedisURL
}

// NewRedisClient opens a Redis client for the configured URL and verifies
// the connection with a ping.
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
	options, err := redis.ParseURL(RedisURL())
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(options)

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", pingErr)
	}

	return client, nil
}
