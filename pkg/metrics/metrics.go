package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records register and authenticate calls by operation and result
	// (OK|FAILED|error).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersvc_auth_attempts_total",
			Help: "Total number of registration and authentication attempts",
		},
		[]string{"operation", "result"},
	)

	// InvitationOperations counts invitation lifecycle calls by operation
	// (create|accept|reject) and result (OK|FAILED|error).
	InvitationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersvc_invitation_operations_total",
			Help: "Total number of invitation lifecycle operations",
		},
		[]string{"operation", "result"},
	)

	// ProjectClientLatency measures calls to the Project service.
	ProjectClientLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usersvc_project_client_latency_seconds",
			Help:    "Project service call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usersvc_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// AuditPruned counts audit log rows removed by the retention job.
	AuditPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usersvc_audit_pruned_total",
			Help: "Total number of audit log entries removed by retention",
		},
	)
)
