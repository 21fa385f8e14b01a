package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := ConnectAddr(context.Background(), srv.Addr())
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestSetGetDelRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if err := client.Set(ctx, "k", []byte{0x00, 0xff, 'a'}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string([]byte{0x00, 0xff, 'a'}) {
		t.Fatalf("unexpected bytes %v", got)
	}
	if err := client.Del(ctx, "k", "missing"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
}

func TestTTLExpires(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	if err := client.Set(ctx, "k", []byte("v"), 10*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	ttl, err := client.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > 10*time.Second {
		t.Fatalf("unexpected ttl %s", ttl)
	}
	srv.FastForward(11 * time.Second)
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestNilClientIsNotInitialized(t *testing.T) {
	var client *Client
	if err := client.Set(context.Background(), "k", nil, time.Second); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close nil client: %v", err)
	}
}
