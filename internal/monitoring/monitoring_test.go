package monitoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heavenboards/user-service/internal/database/testutil"
	"github.com/heavenboards/user-service/internal/monitoring"
	"github.com/heavenboards/user-service/internal/monitoring/checks"
)

type proberFunc func(ctx context.Context) error

func (f proberFunc) Probe(ctx context.Context) error { return f(ctx) }

func TestHealthManagerEvaluate(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("projects", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "connection refused"}
	}))

	live := manager.EvaluateLiveness(context.Background())
	require.True(t, live.Healthy())
	require.Len(t, live.Checks, 1)

	ready := manager.EvaluateReadiness(context.Background())
	require.False(t, ready.Healthy())
	require.Equal(t, monitoring.StatusDown, ready.Status)
	require.Len(t, ready.Checks, 2)
	require.Equal(t, "projects", ready.Checks[1].Component)
	require.Equal(t, "connection refused", ready.Checks[1].Details)
}

func TestHealthManagerRecoversPanics(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("boom", func(ctx context.Context) monitoring.ProbeResult {
		panic("probe exploded")
	}))
	manager.RegisterLiveness(monitoring.NewCheck("silent", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{}
	}))
	manager.RegisterLiveness(monitoring.Check{})

	report := manager.EvaluateLiveness(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "boom", report.Checks[0].Component)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
	require.Equal(t, monitoring.StatusDown, report.Checks[1].Status)
}

func TestResultFromError(t *testing.T) {
	t.Parallel()

	require.Equal(t, monitoring.StatusUp, monitoring.ResultFromError(nil).Status)
	require.Equal(t, monitoring.StatusDegraded, monitoring.ResultFromError(context.DeadlineExceeded).Status)

	result := monitoring.ResultFromError(errors.New("refused"))
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Equal(t, "refused", result.Details)
}

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	check := checks.Database(db)
	require.Equal(t, monitoring.StatusUp, check.Run(context.Background()).Status)

	require.Equal(t, monitoring.StatusDown, checks.Database(nil).Run(context.Background()).Status)
}

func TestProjectsCheck(t *testing.T) {
	t.Parallel()

	up := checks.Projects(proberFunc(func(context.Context) error { return nil }))
	require.Equal(t, monitoring.StatusUp, up.Run(context.Background()).Status)

	down := checks.Projects(proberFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))
	result := down.Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, result.Status)
	require.Contains(t, result.Details, "refused")

	require.Equal(t, monitoring.StatusDegraded, checks.Projects(nil).Run(context.Background()).Status)
}
