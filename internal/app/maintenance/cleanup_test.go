package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	testutil "github.com/heavenboards/user-service/internal/database/testutil"
	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/repository"
	"github.com/heavenboards/user-service/internal/services"
)

func newAuditService(t *testing.T) (*services.AuditService, *repository.Store) {
	t.Helper()
	store, err := repository.New(testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()))
	require.NoError(t, err)
	audit, err := services.NewAuditService(store)
	require.NoError(t, err)
	return audit, store
}

func TestCleanerRunOncePrunesAuditLogs(t *testing.T) {
	audit, store := newAuditService(t)
	ctx := context.Background()
	now := time.Now()

	old := models.AuditLog{Action: "auth.authenticate", Result: "OK", CreatedAt: now.AddDate(0, 0, -40)}
	recent := models.AuditLog{Action: "auth.authenticate", Result: "OK", CreatedAt: now.AddDate(0, 0, -1)}
	require.NoError(t, store.AuditLogs().Create(ctx, &old))
	require.NoError(t, store.AuditLogs().Create(ctx, &recent))

	cleaner := NewCleaner(audit, WithAuditRetentionDays(30))
	require.NoError(t, cleaner.RunOnce(ctx))

	var remaining []models.AuditLog
	require.NoError(t, store.DB().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, recent.ID, remaining[0].ID)
}

func TestCleanerWithoutJobs(t *testing.T) {
	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
	<-cleaner.Stop().Done()
}

func TestCleanerStartSchedulesJobs(t *testing.T) {
	audit, _ := newAuditService(t)
	scheduler := cron.New()

	cleaner := NewCleaner(audit, WithCron(scheduler), WithAuditSchedule("@every 1h"))
	require.NoError(t, cleaner.Start())
	t.Cleanup(func() { <-cleaner.Stop().Done() })

	require.Len(t, scheduler.Entries(), 1)
}

func TestCleanerStartRejectsInvalidSchedule(t *testing.T) {
	audit, _ := newAuditService(t)

	cleaner := NewCleaner(audit, WithAuditSchedule("not a schedule"))
	require.ErrorContains(t, cleaner.Start(), "audit retention")
}

func TestCleanerRunOnceAggregatesErrors(t *testing.T) {
	audit, store := newAuditService(t)
	cleaner := NewCleaner(audit)

	sqlDB, err := store.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = cleaner.RunOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "audit retention")
}
