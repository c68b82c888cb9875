package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"chatwire/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// windowLimiter answers whether a client may make another request in the
// current window.
type windowLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// redisWindowLimiter is a fixed-window counter shared across instances:
// INCR on a time-bucketed key, EXPIRE on first hit.
type redisWindowLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func (l *redisWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := l.client.Pipeline()
	countCmd := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return countCmd.Val() <= int64(l.requests), nil
}

// localWindowLimiter keeps a per-key token bucket sized to the window cap.
type localWindowLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLocalWindowLimiter(requests int, window time.Duration) *localWindowLimiter {
	return &localWindowLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
	}
}

func (l *localWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}

// clientIP extracts the IP part from the request's remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := net.ParseIP(xff); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewHTTPRateLimitMiddleware applies a fixed-window per-IP request cap.
// With a Redis client the window is shared across instances; without one
// it falls back to an in-process limiter.
func NewHTTPRateLimitMiddleware(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	if !cfg.RateLimiting.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	requests := cfg.RateLimiting.HTTP.WindowRequests
	window := cfg.RateLimiting.HTTP.Window

	var limiter windowLimiter
	if redisClient != nil {
		limiter = &redisWindowLimiter{client: redisClient, requests: requests, window: window}
	} else {
		limiter = newLocalWindowLimiter(requests, window)
	}

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), clientIP(c.Request))
		if err != nil {
			// Limiter backend failure never blocks traffic.
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window / time.Second),
			})
			return
		}
		c.Next()
	}
}
