package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"contract-backend/internal/shared/cache"
)

// DefaultResultTTL bounds how long a record stays in the result cache.
const DefaultResultTTL = time.Hour

// ErrCacheMiss reports an absent result cache entry.
var ErrCacheMiss = errors.New("result cache miss")

// ResultCache holds finished records for read-through lookups.
type ResultCache interface {
	Get(ctx context.Context, id string) (ContractAnalysis, error)
	Set(ctx context.Context, record ContractAnalysis, ttl time.Duration) error
}

// CacheKey is the result cache key for a record id.
func CacheKey(id string) string {
	return "contract:" + id
}

// RedisResultCache stores records as JSON under CacheKey.
type RedisResultCache struct {
	Client *cache.Client
}

// NewRedisResultCache wraps a shared redis client.
func NewRedisResultCache(client *cache.Client) *RedisResultCache {
	return &RedisResultCache{Client: client}
}

// Get returns ErrCacheMiss when the key is absent.
func (c *RedisResultCache) Get(ctx context.Context, id string) (ContractAnalysis, error) {
	raw, err := c.Client.Get(ctx, CacheKey(id))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return ContractAnalysis{}, ErrCacheMiss
		}
		return ContractAnalysis{}, err
	}
	var record ContractAnalysis
	if err := json.Unmarshal(raw, &record); err != nil {
		return ContractAnalysis{}, err
	}
	return record, nil
}

// Set stores the record with ttl, falling back to DefaultResultTTL.
func (c *RedisResultCache) Set(ctx context.Context, record ContractAnalysis, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, CacheKey(record.ID), payload, ttl)
}

var _ ResultCache = (*RedisResultCache)(nil)
