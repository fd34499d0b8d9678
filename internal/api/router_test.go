package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/heavenboards/user-service/internal/app"
	iauth "github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/database/testutil"
	"github.com/heavenboards/user-service/internal/projects"
)

type stubDirectory struct{}

func (stubDirectory) FindProjectByID(context.Context, string) (*projects.Project, error) {
	return nil, projects.ErrProjectNotFound
}

func (stubDirectory) UpdateProject(context.Context, *projects.Project) error {
	return nil
}

func newTestRouter(t *testing.T, mutate func(*app.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-test-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	cfg := &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	router, err := NewRouter(db, jwt, stubDirectory{}, cfg)
	require.NoError(t, err)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-test-secret"})
	require.NoError(t, err)
	cfg := &app.Config{}

	_, err = NewRouter(nil, jwt, stubDirectory{}, cfg)
	require.Error(t, err)
	_, err = NewRouter(db, nil, stubDirectory{}, cfg)
	require.Error(t, err)
	_, err = NewRouter(db, jwt, nil, cfg)
	require.Error(t, err)
	_, err = NewRouter(db, jwt, stubDirectory{}, nil)
	require.Error(t, err)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/user/alice"},
		{http.MethodGet, "/api/v1/user"},
		{http.MethodPost, "/api/v1/user"},
		{http.MethodPost, "/api/v1/invitation"},
		{http.MethodGet, "/api/v1/invitation/received"},
		{http.MethodGet, "/api/v1/invitation/sent"},
		{http.MethodPost, "/api/v1/invitation/accept"},
		{http.MethodPost, "/api/v1/invitation/reject"},
	} {
		w := serve(router, tc.method, tc.path)
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestPublicAuthRoutesAreReachable(t *testing.T) {
	router := newTestRouter(t, nil)

	// An empty body fails validation rather than authentication.
	w := serve(router, http.MethodPost, "/api/v1/auth/register")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/auth/authenticate")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	w := serve(router, http.MethodGet, "/api/v1/nowhere")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)

	w := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "usersvc_api_latency_seconds"))
}

func TestMetricsEndpointDisabled(t *testing.T) {
	router := newTestRouter(t, func(cfg *app.Config) {
		cfg.Monitoring.Prometheus.Enabled = false
	})

	w := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	router := newTestRouter(t, func(cfg *app.Config) {
		cfg.Server.RateLimit = app.RateLimitConfig{Requests: 1, Window: time.Hour, Burst: 1}
	})

	require.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/v1/auth/authenticate").Code)

	w := serve(router, http.MethodPost, "/api/v1/auth/authenticate")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health is outside the limited group.
	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)
}
