package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/heavenboards/user-service/pkg/errors"
	"github.com/heavenboards/user-service/pkg/logger"
	"github.com/heavenboards/user-service/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimitConfig allows Requests per Window for each client IP, with bursts
// up to Burst. A zero Burst defaults to Requests.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu          sync.Mutex
	limiters    map[string]*clientLimiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

func (l *ipLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) > limiterIdleTTL {
		for k, v := range l.limiters {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimit returns a middleware that limits requests per client IP with a
// token bucket. It is an in-memory limiter suitable for single-instance deployments.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Requests
	}

	limiters := &ipLimiters{
		limiters:    make(map[string]*clientLimiter),
		limit:       rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
		now:         time.Now,
	}

	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter := limiters.get(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		if limiter.Allow() {
			c.Next()
			return
		}

		reservation := limiter.Reserve()
		retryAfter := int(reservation.Delay().Seconds())
		reservation.Cancel()
		if retryAfter < 1 {
			retryAfter = 1
		}

		logger.WithModule("http").Warn("rate limit exceeded",
			zap.String("client_ip", key),
			zap.String("path", c.Request.URL.Path),
			zap.Int("retry_after", retryAfter),
		)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		response.Abort(c, errors.ErrRateLimit)
	}
}
