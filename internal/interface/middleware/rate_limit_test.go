package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mksolution/account-service/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(limiter *ratelimit.Limiter, allow AllowFunc) (*gin.Engine, *int) {
	r := gin.New()
	hits := 0
	r.Use(RateLimit(limiter, allow))
	r.GET("/ping", func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "pong")
	})
	r.POST("/other", func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "ok")
	})
	return r, &hits
}

func get(r *gin.Engine, path, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(2, 1.0, ratelimit.ScopePerClient, 0)
	r, hits := newLimitedRouter(limiter, nil)

	require.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.9").Code)
	require.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.9").Code)

	w := get(r, "/ping", "203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "too many requests")
	assert.Equal(t, 2, *hits, "rejected request must not reach the handler")
}

func TestRateLimit_AppliesToEveryRoute(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, 1.0, ratelimit.ScopePerClient, 0)
	r, hits := newLimitedRouter(limiter, nil)

	require.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.9").Code)

	req := httptest.NewRequest(http.MethodPost, "/other", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "bucket is shared across routes and methods")
	assert.Equal(t, 1, *hits)
}

func TestRateLimit_IndependentClients(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, 1.0, ratelimit.ScopePerClient, 0)
	r, _ := newLimitedRouter(limiter, nil)

	require.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.1").Code)
	require.Equal(t, http.StatusTooManyRequests, get(r, "/ping", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.2").Code)
}

func TestRateLimit_AllowFuncBypass(t *testing.T) {
	limiter := ratelimit.NewLimiter(0, 1.0, ratelimit.ScopePerClient, 0)
	r, hits := newLimitedRouter(limiter, AllowPrivateIP())

	// Zero-capacity bucket rejects everything, but loopback bypasses.
	w := get(r, "/ping", "127.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *hits)

	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ping", "203.0.113.9").Code)
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	r, hits := newLimitedRouter(nil, nil)
	assert.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.9").Code)
	assert.Equal(t, 1, *hits)
}

func TestRateLimit_RefillAdmitsAgain(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, 100.0, ratelimit.ScopePerClient, 0)
	r, _ := newLimitedRouter(limiter, nil)

	require.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.9").Code)
	require.Equal(t, http.StatusTooManyRequests, get(r, "/ping", "203.0.113.9").Code)
	time.Sleep(20 * time.Millisecond) // 100 tokens/sec refills well within this
	assert.Equal(t, http.StatusOK, get(r, "/ping", "203.0.113.9").Code)
}
