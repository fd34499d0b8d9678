package checks

import (
	"context"

	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/database"
	"github.com/heavenboards/user-service/internal/monitoring"
)

// Database returns a probe that pings the configured database handle.
func Database(db *gorm.DB) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ResultFromError(database.Ping(ctx, db))
	})
}
