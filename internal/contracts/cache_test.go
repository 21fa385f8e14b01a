package contracts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"contract-backend/internal/shared/cache"
)

func newTestResultCache(t *testing.T) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := cache.ConnectAddr(context.Background(), srv.Addr())
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisResultCache(client), srv
}

func TestRedisResultCacheRoundTrip(t *testing.T) {
	rc, srv := newTestResultCache(t)
	ctx := context.Background()
	record := sampleRecord(testID, "user-1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := rc.Set(ctx, record, 10*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !srv.Exists("contract:" + testID) {
		t.Fatalf("expected key contract:%s", testID)
	}
	if ttl := srv.TTL("contract:" + testID); ttl != 10*time.Minute {
		t.Fatalf("expected ttl 10m, got %s", ttl)
	}

	got, err := rc.Get(ctx, testID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "user-1" || got.Summary != "Standard lease" || got.Tier != record.Tier {
		t.Fatalf("unexpected record %#v", got)
	}
	if len(got.Risks) != 1 || got.Risks[0].Explanation != "Renews yearly" {
		t.Fatalf("unexpected risks %#v", got.Risks)
	}
}

func TestRedisResultCacheExpires(t *testing.T) {
	rc, srv := newTestResultCache(t)
	ctx := context.Background()

	if err := rc.Set(ctx, sampleRecord(testID, "user-1", time.Now()), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := srv.TTL(CacheKey(testID)); ttl != DefaultResultTTL {
		t.Fatalf("expected default ttl, got %s", ttl)
	}
	srv.FastForward(DefaultResultTTL + time.Second)

	if _, err := rc.Get(ctx, testID); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisResultCacheCorruptEntry(t *testing.T) {
	rc, srv := newTestResultCache(t)
	if err := srv.Set(CacheKey(testID), "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := rc.Get(context.Background(), testID)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
