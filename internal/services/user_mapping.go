package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/projects"
	"github.com/heavenboards/user-service/pkg/crypto"
)

// newUserFromRegistration builds the account to persist. Hashing the password
// is part of construction so a User never holds a raw password.
func newUserFromRegistration(in RegisterInput, hasher crypto.PasswordHasher, now time.Time) (*models.User, error) {
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &models.User{
		BaseModel: models.BaseModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:  in.Username,
		Password:  hash,
		Role:      models.RoleUser,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}, nil
}

// memberFromUser converts an account into the Project service member shape.
func memberFromUser(user *models.User) projects.Member {
	return projects.Member{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}
