package handlers

import (
	"time"

	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/projects"
	"github.com/heavenboards/user-service/internal/services"
)

type userDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type invitationDTO struct {
	ID               string            `json:"id"`
	InvitedUser      *userDTO          `json:"invitedUser"`
	InvitationSender *userDTO          `json:"invitationSender"`
	Project          *projects.Project `json:"project"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// idRef is the `{id}` reference used by request bodies.
type idRef struct {
	ID string `json:"id" validate:"required,uuid"`
}

func toUserDTO(user *models.User) *userDTO {
	if user == nil {
		return nil
	}
	return &userDTO{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toUserDTOs(users []models.User) []*userDTO {
	out := make([]*userDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	return out
}

func toInvitationDTOs(details []services.InvitationDetails) []invitationDTO {
	out := make([]invitationDTO, 0, len(details))
	for _, d := range details {
		out = append(out, invitationDTO{
			ID:               d.ID,
			InvitedUser:      toUserDTO(d.InvitedUser),
			InvitationSender: toUserDTO(d.InvitationSender),
			Project:          d.Project,
			CreatedAt:        d.CreatedAt,
		})
	}
	return out
}
