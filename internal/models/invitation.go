package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation is a pending request for InvitedUser to join ProjectID. The row
// only exists while the invitation is pending; accepting or rejecting it
// deletes the row. At most one pending invitation exists per project and
// invited user.
type Invitation struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	ProjectID     string `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_project_invited_user,priority:1" json:"projectId"`
	InvitedUserID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_invitations_project_invited_user,priority:2" json:"invitedUserId"`
	InvitedUser   *User  `gorm:"foreignKey:InvitedUserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"invitedUser,omitempty"`

	InvitationSenderID string `gorm:"type:uuid;not null;index" json:"invitationSenderId"`
	InvitationSender   *User  `gorm:"foreignKey:InvitationSenderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"invitationSender,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IsAddressedTo reports whether userID is the invited user.
func (i *Invitation) IsAddressedTo(userID string) bool {
	return i != nil && userID != "" && i.InvitedUserID == userID
}
