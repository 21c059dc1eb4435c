package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/auth"
)

// RateLimiter is a fixed-window request counter on Redis. Keys roll over
// per window, so Redis expiry cleans them up on its own.
type RateLimiter struct {
	rdb    *redis.Client
	name   string
	window time.Duration
	max    int
	// failuresOnly counts only requests that end >= 400; the auth tier
	// must not penalize successful logins.
	failuresOnly bool
}

// NewRateLimiter returns a limiter for one tier.
func NewRateLimiter(rdb *redis.Client, name string, window time.Duration, max int, failuresOnly bool) *RateLimiter {
	return &RateLimiter{rdb: rdb, name: name, window: window, max: max, failuresOnly: failuresOnly}
}

func (l *RateLimiter) key(c *gin.Context) string {
	// Authenticated requests are counted per user, anonymous per IP.
	who := auth.UserIDFromContext(c)
	if who == "" {
		who = c.ClientIP()
	}
	window := time.Now().Unix() / int64(l.window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.name, who, window)
}

// Handler enforces the limit. Redis errors fail open: rate limiting is
// protection, not a dependency.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.key(c)
		ctx := c.Request.Context()

		if l.failuresOnly {
			if n, err := l.rdb.Get(ctx, key).Int(); err == nil && n >= l.max {
				tooMany(c)
				return
			}
			c.Next()
			if c.Writer.Status() >= 400 {
				l.count(c, key)
			}
			return
		}

		if n, ok := l.count(c, key); ok && n > l.max {
			tooMany(c)
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) count(c *gin.Context, key string) (int, bool) {
	ctx := c.Request.Context()
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false
	}
	return int(incr.Val()), true
}

func tooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"message": "Too many requests, please try again later",
	})
}
