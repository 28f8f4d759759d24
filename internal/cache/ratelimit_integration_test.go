//go:build integration

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itemledger/itemledger/internal/testutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx := context.Background()

	pinned := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c, err := New(ctx, redisURL, WithPoolSize(4), WithClock(func() time.Time { return pinned }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("FlushRedis: %v", err)
	}
	return c
}

func TestIntegrationAllowIP_BurstThenReject(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	const burst = 3
	for i := 0; i < burst; i++ {
		res, err := c.AllowIP(ctx, "203.0.113.7", 1, burst)
		if err != nil {
			t.Fatalf("AllowIP: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected inside burst", i+1)
		}
	}

	res, err := c.AllowIP(ctx, "203.0.113.7", 1, burst)
	if err != nil {
		t.Fatalf("AllowIP: %v", err)
	}
	if res.Allowed || res.RetryAfter <= 0 {
		t.Errorf("expected rejection with retry-after, got %+v", res)
	}

	other, err := c.AllowIP(ctx, "203.0.113.8", 1, burst)
	if err != nil {
		t.Fatalf("AllowIP: %v", err)
	}
	if !other.Allowed {
		t.Error("a different client should have its own bucket")
	}
}

func TestIntegrationAllowIP_Concurrent(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	const burst = 5
	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.AllowIP(ctx, "198.51.100.1", 1, burst)
			if err != nil {
				t.Errorf("AllowIP: %v", err)
				return
			}
			if res.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	// The clock is pinned, so nothing refills.
	if got := allowed.Load(); got != burst {
		t.Errorf("allowed = %d, want %d", got, burst)
	}
}

func TestIntegrationAllowIP_Refill(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c, err := New(ctx, redisURL, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("FlushRedis: %v", err)
	}

	if res, err := c.AllowIP(ctx, "192.0.2.9", 2, 1); err != nil || !res.Allowed {
		t.Fatalf("first request: res=%+v err=%v", res, err)
	}
	if res, err := c.AllowIP(ctx, "192.0.2.9", 2, 1); err != nil || res.Allowed {
		t.Fatalf("second request should be limited: res=%+v err=%v", res, err)
	}

	now = now.Add(500 * time.Millisecond)
	res, err := c.AllowIP(ctx, "192.0.2.9", 2, 1)
	if err != nil {
		t.Fatalf("AllowIP: %v", err)
	}
	if !res.Allowed {
		t.Errorf("expected a refilled token after 500ms at 2 rps, got %+v", res)
	}
}
