package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/heavenboards/user-service/internal/monitoring"
	"github.com/heavenboards/user-service/pkg/logger"
	"github.com/heavenboards/user-service/pkg/response"
)

// Liveness reports the liveness probes. A down probe yields 503.
func Liveness(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeReport(c, manager.EvaluateLiveness(requestContext(c)))
	}
}

// Readiness reports every probe, including remote dependencies. A degraded
// dependency is reported but still answers 200.
func Readiness(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeReport(c, manager.EvaluateReadiness(requestContext(c)))
	}
}

func writeReport(c *gin.Context, report monitoring.HealthReport) {
	code := http.StatusOK
	if report.Status == monitoring.StatusDown {
		code = http.StatusServiceUnavailable
	}
	if !report.Healthy() {
		log := logger.WithModule("health")
		for _, check := range report.Checks {
			if check.Status != monitoring.StatusUp {
				log.Warn("health probe failed",
					zap.String("component", check.Component),
					zap.String("status", string(check.Status)),
					zap.String("details", check.Details))
			}
		}
	}

	c.JSON(code, response.Response{
		Success: code == http.StatusOK,
		Data:    report,
	})
}
