package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/heavenboards/user-service/internal/models"
)

// Invitations is the invitation store.
type Invitations struct {
	db *gorm.DB
}

// FindByIDForUpdate loads the invitation and locks the row until the
// surrounding transaction ends. SQLite has no row locks and relies on its
// single writer instead.
func (r *Invitations) FindByIDForUpdate(ctx context.Context, id string) (*models.Invitation, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invitation models.Invitation
	if err := query.Where("id = ?", id).Take(&invitation).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &invitation, nil
}

func (r *Invitations) FindByProjectAndInvitedUser(ctx context.Context, projectID, invitedUserID string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND invited_user_id = ?", projectID, invitedUserID).
		Take(&invitation).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &invitation, nil
}

// FindAllByInvitedUser lists invitations received by userID with both users loaded.
func (r *Invitations) FindAllByInvitedUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	return r.findAllWithUsers(ctx, "invited_user_id = ?", userID)
}

// FindAllBySender lists invitations sent by userID with both users loaded.
func (r *Invitations) FindAllBySender(ctx context.Context, userID string) ([]models.Invitation, error) {
	return r.findAllWithUsers(ctx, "invitation_sender_id = ?", userID)
}

func (r *Invitations) CountByInvitedUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "invited_user_id = ?", userID)
}

func (r *Invitations) CountBySender(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "invitation_sender_id = ?", userID)
}

// Create inserts the invitation. A second pending invitation for the same
// project and invited user yields ErrAlreadyExists.
func (r *Invitations) Create(ctx context.Context, invitation *models.Invitation) error {
	return mapCreateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(invitation).Error)
}

// Delete removes the invitation. Deleting a missing row yields ErrNotFound.
func (r *Invitations) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invitation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Invitations) findAllWithUsers(ctx context.Context, condition string, userID string) ([]models.Invitation, error) {
	invitations := []models.Invitation{}
	err := r.db.WithContext(ctx).
		Preload("InvitedUser").
		Preload("InvitationSender").
		Where(condition, userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&invitations).Error
	return invitations, err
}

func (r *Invitations) count(ctx context.Context, condition string, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invitation{}).Where(condition, userID).Count(&count).Error
	return count, err
}
