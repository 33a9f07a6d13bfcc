package adapter

import (
	"context"
	"errors"
	"time"

	"dq-index/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCacheAdapter keeps submission retrieval responses in Redis.
type RedisCacheAdapter struct {
	client *redis.Client
}

// NewRedisCacheAdapter wraps client, which cache.NewRedisClient has already pinged.
func NewRedisCacheAdapter(client *redis.Client) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// Get maps redis.Nil to domain.ErrCacheMiss so callers can tell a miss from an outage.
func (r *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	payload, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCacheMiss
	}
	return payload, err
}

func (r *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCacheAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
