package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/models"
)

// AuditLogs persists audit trail entries.
type AuditLogs struct {
	db *gorm.DB
}

func (r *AuditLogs) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// DeleteOlderThan removes entries created before cutoff and reports how many were removed.
func (r *AuditLogs) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}
