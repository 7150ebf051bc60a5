package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mksolution/account-service/internal/ratelimit"
	"github.com/mksolution/account-service/pkg/response"
)

// ipFromCtx extracts the client IP, preferring the value resolved by
// the RealIP middleware.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// AllowFunc returns true to bypass the limiter for a request.
type AllowFunc func(*gin.Context) bool

// RateLimit applies token-bucket admission control in front of every
// route. One token is consumed per request; over-limit requests are cut
// off with 429 and a Retry-After hint of one refill period, and never
// reach downstream handlers.
//
// Requests with no determinable client address are admitted without
// consuming a token (fail open): the limiter exists to protect against
// chatty clients, not to deny service when a proxy strips the address.
// The admission check is bounded; the only lock taken is held for token
// arithmetic, so there is no timeout path.
func RateLimit(limiter *ratelimit.Limiter, allow AllowFunc) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.RefillPeriod().Seconds())))
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		key := ipFromCtx(c)
		if key == "" {
			c.Next()
			return
		}
		if !limiter.Allow(key, time.Now()) {
			c.Header("Retry-After", retryAfter)
			response.Abort(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}
