package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/repository"
	appValidator "github.com/heavenboards/user-service/pkg/validator"
)

// UserService answers account lookups for other services and clients.
type UserService struct {
	store *repository.Store
}

// NewUserService constructs a UserService using the provided store.
func NewUserService(store *repository.Store) (*UserService, error) {
	if store == nil {
		return nil, errors.New("user service: store is required")
	}
	return &UserService{store: store}, nil
}

// FindByUsername returns the account or ErrUserNotFound.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users().FindByUsername(ensureContext(ctx), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: find by username: %w", err)
	}
	return user, nil
}

// FindByIDs returns the accounts for the distinct ids, ordered by username.
// Unknown ids are skipped; malformed ids fail with ErrInvalidUserID.
func (s *UserService) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	ids = normaliseIDs(ids)
	if err := appValidator.ValidateVar(ids, "dive,uuid"); err != nil {
		return nil, ErrInvalidUserID
	}

	users, err := s.store.Users().FindAllByIDs(ensureContext(ctx), ids)
	if err != nil {
		return nil, fmt.Errorf("user service: find by ids: %w", err)
	}
	return users, nil
}
