package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/models"
)

// Users is the credential store.
type Users struct {
	db *gorm.DB
}

// ExistsByUsername reports whether an account with the exact username exists.
func (r *Users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).Take(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// FindAllByIDs returns the users matching ids ordered by username. Unknown
// ids are skipped.
func (r *Users) FindAllByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

// Create inserts the user. A duplicate username yields ErrAlreadyExists.
func (r *Users) Create(ctx context.Context, user *models.User) error {
	return mapCreateError(r.db.WithContext(ctx).Create(user).Error)
}
