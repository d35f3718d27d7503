package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/globalconnect/pkg/api"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})
}

func doRequest(h http.Handler, method, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Allow(t *testing.T) {
	logger := setupTestLogger()

	t.Run("burst up to the limit is allowed", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute, logger)
		defer limiter.Stop()

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("192.168.1.1"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, limiter.Allow("192.168.1.1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, logger)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		limiter := NewRateLimiter(2, 100*time.Millisecond, logger)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("c"))
		assert.True(t, limiter.Allow("c"))
		assert.False(t, limiter.Allow("c"))

		// Один токен восстанавливается за window/requests = 50ms
		time.Sleep(120 * time.Millisecond)
		assert.True(t, limiter.Allow("c"), "tokens should be refilled")
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, logger)
		limiter.Stop()
		assert.NotPanics(t, limiter.Stop)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute, setupTestLogger())
	defer limiter.Stop()
	handler := limiter.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		w := doRequest(handler, http.MethodPost, "/api/auth/login", "192.168.1.2:12345")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", w.Body.String())
	}

	// Другой порт того же IP не получает новый лимит
	w := doRequest(handler, http.MethodPost, "/api/auth/login", "192.168.1.2:54321")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "20", w.Header().Get("Retry-After"))

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Too many requests, please try again later", resp.Detail)

	assert.Equal(t, http.StatusOK, doRequest(handler, http.MethodPost, "/api/auth/login", "10.0.0.9:1").Code)
}

func TestRateLimiter_LogsExceededRequests(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	limiter := NewRateLimiter(1, time.Minute, logger)
	defer limiter.Stop()
	handler := limiter.Middleware(okHandler())

	doRequest(handler, http.MethodPost, "/api/auth/register", "192.168.5.5:1")
	doRequest(handler, http.MethodPost, "/api/auth/register", "192.168.5.5:1")

	out := logBuf.String()
	assert.Contains(t, out, "Rate limit exceeded")
	assert.Contains(t, out, "ip=192.168.5.5")
	assert.Contains(t, out, "path=/api/auth/register")
}

func TestPathRateLimiter(t *testing.T) {
	limits := []PathRateLimit{
		{Path: "/api/auth/login", Rate: 1, Window: time.Minute},
	}
	limiter := NewPathRateLimiter(limits, 3, time.Minute, setupTestLogger())
	defer limiter.Stop()
	handler := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(handler, http.MethodPost, "/api/auth/login", "1.1.1.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, http.MethodPost, "/api/auth/login", "1.1.1.1:1").Code)

	// Общий лимит считается отдельно от лимита login
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, http.MethodGet, "/api/auth/me", "1.1.1.1:1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, http.MethodGet, "/api/auth/me", "1.1.1.1:1").Code)
}

func TestRateLimiter_CleanupIdle(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute, setupTestLogger())
	defer limiter.Stop()

	limiter.Allow("old")
	limiter.Allow("fresh")

	limiter.mu.Lock()
	limiter.limiters["old"].lastSeen = time.Now().Add(-3 * time.Minute)
	limiter.mu.Unlock()

	limiter.cleanupIdle(time.Now())

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.limiters, "old")
	assert.Contains(t, limiter.limiters, "fresh")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		expectedIP string
	}{
		{name: "X-Forwarded-For with single IP", remoteAddr: "10.0.0.1:12345", xff: "192.168.1.1", expectedIP: "192.168.1.1"},
		{name: "X-Forwarded-For with multiple IPs", remoteAddr: "10.0.0.1:12345", xff: "192.168.1.1, 10.0.0.2", expectedIP: "192.168.1.1"},
		{name: "X-Real-IP when X-Forwarded-For is empty", remoteAddr: "10.0.0.1:12345", xRealIP: "192.168.2.1", expectedIP: "192.168.2.1"},
		{name: "RemoteAddr without port", remoteAddr: "192.168.3.1:54321", expectedIP: "192.168.3.1"},
		{name: "RemoteAddr that is not host:port", remoteAddr: "pipe", expectedIP: "pipe"},
		{name: "X-Forwarded-For takes precedence over X-Real-IP", remoteAddr: "10.0.0.1:12345", xff: "192.168.1.1", xRealIP: "192.168.2.1", expectedIP: "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, getClientIP(req))
		})
	}
}
