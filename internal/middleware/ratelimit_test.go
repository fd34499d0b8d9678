package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{Requests: 2, Window: time.Hour}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = remoteAddr
		r.ServeHTTP(w, req)
		return w
	}

	// The burst equals the request budget.
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	}

	w := send("10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	require.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")

	// Other clients have their own bucket.
	require.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestIPLimitersEvictIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiters := &ipLimiters{
		limiters:    make(map[string]*clientLimiter),
		limit:       1,
		burst:       1,
		lastCleanup: now,
		now:         func() time.Time { return now },
	}

	limiters.get("a")
	now = now.Add(limiterIdleTTL + time.Second)
	limiters.get("b")

	require.Len(t, limiters.limiters, 1)
	require.Contains(t, limiters.limiters, "b")
}
