package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sakif/robotics-league/internal/config"
)

// compile-time check that *Redis implements Backend
var _ Backend = (*Redis)(nil)

// Redis stores each profile as one hash: {prefix}:profile:{namespace}.
// Hash fields are the storage keys, so a profile's whole local storage can
// be inspected with a single HGETALL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) profileKey(namespace string) string {
	return fmt.Sprintf("%s:profile:%s", r.prefix, namespace)
}

func (r *Redis) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.profileKey(namespace), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: hget %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key, value string) error {
	if err := r.client.HSet(ctx, r.profileKey(namespace), key, value).Err(); err != nil {
		return fmt.Errorf("redis: hset %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	if err := r.client.HDel(ctx, r.profileKey(namespace), key).Err(); err != nil {
		return fmt.Errorf("redis: hdel %s: %w", key, err)
	}
	return nil
}
