package redis

import (
	"context"
	"fmt"
	"time"

	"swasthyaflow/pkg/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient Redis client wrapper
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates Redis client and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// WrapClient wraps an existing go-redis client
func WrapClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// GetClient retrieves the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
