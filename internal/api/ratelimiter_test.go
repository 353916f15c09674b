package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
	seen  []string
}

func (s *staticLimiter) Allow(client string) bool {
	s.seen = append(s.seen, client)
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on rejected request")
	}
}

func TestRateLimitMiddlewarePassesClientAddress(t *testing.T) {
	limiter := &staticLimiter{allow: true}
	var called bool
	middleware := rateLimitMiddleware(limiter, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	middleware.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
	if len(limiter.seen) != 1 || limiter.seen[0] != "203.0.113.7" {
		t.Fatalf("expected limiter keyed by client host, got %v", limiter.seen)
	}
}

func TestRateLimitMiddlewareNilLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	rateLimitMiddleware(nil, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected request to pass through, got %d", rec.Code)
	}
}

func TestClientLimiterIsolatesClients(t *testing.T) {
	limiter := newTokenBucketLimiter(0.001, 2)
	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatalf("expected burst of two to be allowed")
	}
	if limiter.Allow("a") {
		t.Fatalf("expected third request to be denied")
	}
	if !limiter.Allow("b") {
		t.Fatalf("expected a different client to have its own bucket")
	}
}

func TestClientLimiterSweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTokenBucketLimiter(1, 1)
	limiter.now = func() time.Time { return now }

	limiter.Allow("stale")
	now = now.Add(2 * clientIdleTimeout)
	limiter.sweep(now)

	if _, ok := limiter.clients["stale"]; ok {
		t.Fatalf("expected idle client to be dropped")
	}
}

func TestClientKeyFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "unix-socket"
	if got := clientKey(req); got != "unix-socket" {
		t.Fatalf("expected raw remote addr, got %q", got)
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if !limiter.Allow("client") {
		t.Fatalf("expected first request to be allowed")
	}
}
