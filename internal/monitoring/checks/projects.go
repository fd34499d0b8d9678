package checks

import (
	"context"

	"github.com/heavenboards/user-service/internal/monitoring"
)

// Prober is implemented by remote dependencies that can report reachability.
type Prober interface {
	Probe(ctx context.Context) error
}

// Projects returns a probe for the Project service. An unreachable Project
// service only degrades the report: registration, authentication and user
// lookups keep working without it.
func Projects(p Prober) monitoring.Check {
	return monitoring.NewCheck("projects", func(ctx context.Context) monitoring.ProbeResult {
		if p == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "project service not configured"}
		}
		if err := p.Probe(ctx); err != nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: err.Error()}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	})
}
