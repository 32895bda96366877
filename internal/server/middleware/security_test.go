package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestAuth tests API key validation.
func TestAuth(t *testing.T) {
	logger := zerolog.Nop()
	config := DefaultAuthConfig("/api/v1")
	config.Enabled = true
	config.APIKey = "secret"
	handler := Auth(config, &logger)(okHandler())

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"missing key", "/api/v1/events", nil, http.StatusUnauthorized},
		{"wrong key", "/api/v1/events", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", "/api/v1/events", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer key", "/api/v1/events", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"public health", "/health", nil, http.StatusOK},
		{"public prefixed health", "/api/v1/health", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestAuthDisabled tests that a disabled config lets everything through.
func TestAuthDisabled(t *testing.T) {
	logger := zerolog.Nop()
	rec := httptest.NewRecorder()
	Auth(DefaultAuthConfig("/api/v1"), &logger)(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestAuthEmptyKeyRejects tests that enabling auth without a key fails closed.
func TestAuthEmptyKeyRejects(t *testing.T) {
	logger := zerolog.Nop()
	config := DefaultAuthConfig("/api/v1")
	config.Enabled = true

	rec := httptest.NewRecorder()
	Auth(config, &logger)(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestRateLimit tests per-IP limiting.
func TestRateLimit(t *testing.T) {
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, &logger)
	handler := RateLimit(rl)(okHandler())

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do("10.0.0.1:1000"); got != http.StatusOK {
		t.Fatalf("first request = %d", got)
	}
	if got := do("10.0.0.1:1001"); got != http.StatusOK {
		t.Fatalf("second request = %d", got)
	}
	if got := do("10.0.0.1:1002"); got != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", got)
	}
	if got := do("10.0.0.2:1000"); got != http.StatusOK {
		t.Errorf("other client = %d, want 200", got)
	}
}

// TestClientIP tests forwarded header handling.
func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Errorf("clientIP = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Errorf("clientIP = %q", got)
	}
}

// TestRateLimiterEvict tests that idle visitors are dropped.
func TestRateLimiterEvict(t *testing.T) {
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 10, &logger)
	rl.Allow("a")
	rl.evict(time.Now().Add(time.Hour))

	rl.mu.Lock()
	n := len(rl.visitors)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("visitors = %d, want 0", n)
	}
}
