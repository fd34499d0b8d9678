package database

import (
	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/models"
)

// AutoMigrate creates or updates the schema. Users must be migrated before
// invitations so the foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Invitation{},
		&models.AuditLog{},
	)
}
