package httpkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"learnhub_backend/platform/cache"
	"learnhub_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// LoginRateLimiter is a Redis-windowed counter limiter for the login
// endpoint, keyed by client IP plus the submitted email so one address
// cannot lock out a shared NAT.
type LoginRateLimiter struct {
	cache  *cache.Cache
	limit  int64
	window time.Duration
	log    *logger.Logger
}

// NewLoginRateLimiter creates a login rate limiter allowing limit attempts
// per window for each (IP, email) pair.
func NewLoginRateLimiter(c *cache.Cache, limit int, window time.Duration, log *logger.Logger) *LoginRateLimiter {
	if limit < 1 {
		limit = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginRateLimiter{cache: c, limit: int64(limit), window: window, log: log}
}

// Limit returns the middleware. The request body is restored after the
// email is peeked so downstream binding still works. Counter failures fail
// open: a broken cache must not take down login.
func (l *LoginRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := peekEmail(c)
		key := "ratelimit:login:" + c.ClientIP() + "-" + email

		ctx := c.Request.Context()
		count, err := l.cache.Incr(ctx, key)
		if err != nil {
			if l.log != nil {
				l.log.CacheError("incr", key, err)
			}
			c.Next()
			return
		}

		if count == 1 {
			if err := l.cache.Expire(ctx, key, l.window); err != nil && l.log != nil {
				l.log.CacheError("expire", key, err)
			}
		}

		if count > l.limit {
			if l.log != nil {
				l.log.RateLimitExceeded(c.ClientIP(), c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{
				Success: false,
				Message: "Too many login attempts, please try again later",
			})
			return
		}

		c.Next()
	}
}

func peekEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		return ""
	}
	// Stitch the consumed prefix back onto whatever the limit left unread,
	// so oversized bodies reach downstream binding intact.
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}
