package staging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contract-backend/internal/shared/cache"
)

// RedisCache stages uploads in redis. Put uses a single SET with expiry so a key
// never exists without a TTL.
type RedisCache struct {
	Client *cache.Client
}

func NewRedisCache(client *cache.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (r *RedisCache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := r.Client.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("stage %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (Payload, error) {
	raw, err := r.Client.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read staged %s: %w", key, err)
	}
	return Decode(raw)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, key); err != nil {
		return fmt.Errorf("delete staged %s: %w", key, err)
	}
	return nil
}
