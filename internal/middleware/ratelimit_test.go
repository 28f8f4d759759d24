package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itemledger/itemledger/internal/cache"
	"github.com/itemledger/itemledger/internal/metrics"
	"github.com/itemledger/itemledger/internal/testutil"
)

// fakeLimiter records the keys it was asked about and replies with res or err.
type fakeLimiter struct {
	mu  sync.Mutex
	ips []string
	res *cache.RateLimitResult
	err error
}

func (f *fakeLimiter) AllowIP(ctx context.Context, ip string, rps, burst int) (*cache.RateLimitResult, error) {
	f.mu.Lock()
	f.ips = append(f.ips, ip)
	f.mu.Unlock()
	return f.res, f.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{err: errors.New("should not be called")}
	h := RateLimit(RateLimitConfig{Enabled: false, RPS: 1, Burst: 1, Limiter: limiter})(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	if len(limiter.ips) != 0 {
		t.Error("disabled limiter should not be consulted")
	}
}

func TestRateLimit_SharedLimiterRejects(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	limiter := &fakeLimiter{res: &cache.RateLimitResult{
		Allowed:    false,
		Limit:      10,
		Remaining:  0,
		ResetAt:    time.Unix(1_700_000_000, 0),
		RetryAfter: 3 * time.Second,
	}}
	h := RateLimit(RateLimitConfig{
		Enabled: true, RPS: 10, Burst: 5,
		Limiter: limiter, Metrics: rec, Logger: testutil.DiscardLogger(),
	})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"error_code":"RATE_LIMITED"`) {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
	if got := resp.Header().Get("Retry-After"); got != "3" {
		t.Errorf("Retry-After = %q, want 3", got)
	}
	if got := resp.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", got)
	}
	if got := resp.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
		t.Errorf("X-RateLimit-Reset = %q", got)
	}
	if limiter.ips[0] != "203.0.113.9" {
		t.Errorf("limiter key = %q, want host without port", limiter.ips[0])
	}
	if rec.Snapshot().RateLimited != 1 {
		t.Error("rejection not counted")
	}
}

func TestRateLimit_SharedLimiterFailsOpen(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{err: errors.New("connection refused")}
	h := RateLimit(RateLimitConfig{
		Enabled: true, RPS: 10, Burst: 5,
		Limiter: limiter, Logger: testutil.DiscardLogger(),
	})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_LocalFallback(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	h := RateLimit(RateLimitConfig{
		Enabled: true, RPS: 1, Burst: 2,
		Metrics: rec, Logger: testutil.DiscardLogger(),
	})(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.RemoteAddr = "198.51.100.4:4000"
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited, got %v", codes)
	}
	if rec.Snapshot().RateLimited != 1 {
		t.Error("rejection not counted")
	}

	// A different client has its own window.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.RemoteAddr = "198.51.100.5:4000"
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", resp.Code)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.7", "192.0.2.7"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
