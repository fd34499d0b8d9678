package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heavenboards/user-service/internal/app"
	"github.com/heavenboards/user-service/internal/handlers"
	"github.com/heavenboards/user-service/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager, cfg app.MonitoringConfig) {
	r.GET("/health", handlers.Liveness(manager))
	r.GET("/health/ready", handlers.Readiness(manager))

	if !cfg.Prometheus.Enabled {
		return
	}
	endpoint := strings.TrimSpace(cfg.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}
	r.GET(endpoint, gin.WrapH(promhttp.Handler()))
}
