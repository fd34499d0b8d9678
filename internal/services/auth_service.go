package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/repository"
	"github.com/heavenboards/user-service/pkg/crypto"
	"github.com/heavenboards/user-service/pkg/logger"
	"github.com/heavenboards/user-service/pkg/metrics"
)

// TokenIssuer produces bearer tokens bound to an account.
type TokenIssuer interface {
	GenerateAccessToken(input auth.AccessTokenInput) (string, error)
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AuthenticateInput carries the credentials of an authentication request.
type AuthenticateInput struct {
	Username string
	Password string
}

// AuthOption customises AuthService behaviour.
type AuthOption func(*AuthService)

// WithAuthClock injects a custom clock primarily for testing.
func WithAuthClock(clock func() time.Time) AuthOption {
	return func(s *AuthService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithAuthAudit records register and authenticate outcomes in the audit trail.
func WithAuthAudit(audit *AuditService) AuthOption {
	return func(s *AuthService) {
		s.audit = audit
	}
}

// AuthService implements registration and credential authentication.
type AuthService struct {
	store  *repository.Store
	hasher crypto.PasswordHasher
	tokens TokenIssuer
	audit  *AuditService
	now    func() time.Time
	log    *zap.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(store *repository.Store, hasher crypto.PasswordHasher, tokens TokenIssuer, opts ...AuthOption) (*AuthService, error) {
	if store == nil {
		return nil, errors.New("auth service: store is required")
	}
	if hasher == nil {
		return nil, errors.New("auth service: password hasher is required")
	}
	if tokens == nil {
		return nil, errors.New("auth service: token issuer is required")
	}

	svc := &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		log:    logger.WithModule("auth"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates an account and issues its first token. A taken username
// is reported as USERNAME_ALREADY_EXIST, including when a concurrent
// registration wins the race between the existence check and the insert.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (result *AuthenticationResult, err error) {
	ctx = ensureContext(ctx)
	defer func() {
		s.observe(ctx, AuditActionRegister, in.Username, result, err)
	}()

	exists, err := s.store.Users().ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("auth service: check username: %w", err)
	}
	if exists {
		return authFailed(AuthUsernameAlreadyExist), nil
	}

	user, err := newUserFromRegistration(in, s.hasher, s.now())
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("auth service: build user: %w", err)
	}

	var token string
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		issued, err := s.issueToken(user)
		if err != nil {
			return err
		}
		token = issued
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return authFailed(AuthUsernameAlreadyExist), nil
		}
		return nil, fmt.Errorf("auth service: register user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return authSucceeded(user.ID, token), nil
}

// Authenticate verifies credentials and issues a token. Every failure after
// the username existence check is reported as INVALID_USERNAME_PASSWORD.
func (s *AuthService) Authenticate(ctx context.Context, in AuthenticateInput) (result *AuthenticationResult, err error) {
	ctx = ensureContext(ctx)
	defer func() {
		s.observe(ctx, AuditActionAuthenticate, in.Username, result, err)
	}()

	exists, err := s.store.Users().ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("auth service: check username: %w", err)
	}
	if !exists {
		return authFailed(AuthUsernameNotFound), nil
	}

	token, user, verifyErr := s.verify(ctx, in)
	if verifyErr != nil {
		s.log.Debug("authentication rejected", zap.String("username", in.Username), zap.Error(verifyErr))
		return authFailed(AuthInvalidUsernamePassword), nil
	}

	return authSucceeded(user.ID, token), nil
}

func (s *AuthService) verify(ctx context.Context, in AuthenticateInput) (string, *models.User, error) {
	user, err := s.store.Users().FindByUsername(ctx, in.Username)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if err := s.hasher.Verify(in.Password, user.Password); err != nil {
		return "", nil, err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	token, err := s.tokens.GenerateAccessToken(auth.AccessTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *AuthService) observe(ctx context.Context, action, username string, result *AuthenticationResult, err error) {
	var status OperationStatus
	entry := AuditEntry{Action: action, Resource: "user", Username: username}
	if result != nil {
		status = result.Status
		entry.UserID = result.UserID
		if len(result.Errors) > 0 {
			entry.Metadata = map[string]any{"errorCode": string(result.Errors[0].ErrorCode)}
		}
	}
	entry.Result = resultLabel(status, err)

	operation := "register"
	if action == AuditActionAuthenticate {
		operation = "authenticate"
	}
	metrics.AuthAttempts.WithLabelValues(operation, entry.Result).Inc()
	recordAudit(s.audit, ctx, entry)
}
