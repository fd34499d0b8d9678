package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/projects"
	"github.com/heavenboards/user-service/internal/repository"
	appErrors "github.com/heavenboards/user-service/pkg/errors"
	"github.com/heavenboards/user-service/pkg/logger"
	"github.com/heavenboards/user-service/pkg/metrics"
)

// ProjectDirectory is the remote Project service as seen by invitations.
type ProjectDirectory interface {
	FindProjectByID(ctx context.Context, id string) (*projects.Project, error)
	UpdateProject(ctx context.Context, project *projects.Project) error
}

// CreateInvitationInput identifies who is invited to which project.
type CreateInvitationInput struct {
	InvitedUserID string
	ProjectID     string
}

// AcceptInvitationInput identifies the invitation to accept. ProjectID is
// optional and, when set, must match the stored project.
type AcceptInvitationInput struct {
	InvitationID string
	ProjectID    string
}

// InvitationDetails is an invitation joined with both users and its project.
type InvitationDetails struct {
	ID               string
	InvitedUser      *models.User
	InvitationSender *models.User
	Project          *projects.Project
	CreatedAt        time.Time
}

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationClock injects a custom clock primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInvitationAudit records lifecycle outcomes in the audit trail.
func WithInvitationAudit(audit *AuditService) InvitationOption {
	return func(s *InvitationService) {
		s.audit = audit
	}
}

// InvitationService implements the invitation lifecycle: create, find,
// accept and reject. A stored invitation is pending; accept and reject both
// delete it.
type InvitationService struct {
	store    *repository.Store
	projects ProjectDirectory
	audit    *AuditService
	now      func() time.Time
	log      *zap.Logger
}

// NewInvitationService constructs an InvitationService with the provided dependencies.
func NewInvitationService(store *repository.Store, directory ProjectDirectory, opts ...InvitationOption) (*InvitationService, error) {
	if store == nil {
		return nil, errors.New("invitation service: store is required")
	}
	if directory == nil {
		return nil, errors.New("invitation service: project directory is required")
	}

	svc := &InvitationService{
		store:    store,
		projects: directory,
		now:      time.Now,
		log:      logger.WithModule("invitations"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create invites in.InvitedUserID to in.ProjectID on behalf of caller.
func (s *InvitationService) Create(ctx context.Context, caller auth.Identity, in CreateInvitationInput) (result *InvitationResult, err error) {
	ctx = ensureContext(ctx)
	defer func() {
		s.observe(ctx, AuditActionInvitationCreate, caller, in.ProjectID, result, err)
	}()

	if caller.IsZero() {
		return nil, appErrors.ErrUnauthorized
	}

	project, err := s.requireProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		existing, err := tx.Invitations().FindByProjectAndInvitedUser(ctx, project.ID, in.InvitedUserID)
		switch {
		case err == nil:
			result = invitationFailed(existing.ID, InvitationAlreadyCreated)
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check existing invitation: %w", err)
		}

		if err := requireUser(ctx, tx, in.InvitedUserID); err != nil {
			return err
		}
		if err := requireUser(ctx, tx, caller.UserID); err != nil {
			return err
		}

		invitation := &models.Invitation{
			ProjectID:          project.ID,
			InvitedUserID:      in.InvitedUserID,
			InvitationSenderID: caller.UserID,
			CreatedAt:          s.now(),
		}
		if err := tx.Invitations().Create(ctx, invitation); err != nil {
			return err
		}
		result = invitationSucceeded(invitation.ID)
		return nil
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, repository.ErrAlreadyExists) {
		// A concurrent create committed first; report the winner.
		existing, findErr := s.store.Invitations().FindByProjectAndInvitedUser(ctx, project.ID, in.InvitedUserID)
		if findErr != nil {
			return nil, fmt.Errorf("invitation service: load conflicting invitation: %w", findErr)
		}
		return invitationFailed(existing.ID, InvitationAlreadyCreated), nil
	}
	return nil, fmt.Errorf("invitation service: create: %w", err)
}

// FindReceived lists the invitations addressed to caller.
func (s *InvitationService) FindReceived(ctx context.Context, caller auth.Identity) ([]InvitationDetails, error) {
	ctx = ensureContext(ctx)
	if caller.IsZero() {
		return nil, appErrors.ErrUnauthorized
	}

	invitations, err := s.store.Invitations().FindAllByInvitedUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("invitation service: find received: %w", err)
	}
	return s.enrich(ctx, invitations)
}

// FindSent lists the invitations caller has sent.
func (s *InvitationService) FindSent(ctx context.Context, caller auth.Identity) ([]InvitationDetails, error) {
	ctx = ensureContext(ctx)
	if caller.IsZero() {
		return nil, appErrors.ErrUnauthorized
	}

	invitations, err := s.store.Invitations().FindAllBySender(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("invitation service: find sent: %w", err)
	}
	return s.enrich(ctx, invitations)
}

// Accept consumes the invitation and adds caller to the project's members.
// The row is deleted and the Project service updated inside one transaction,
// so a failed remote update leaves the invitation pending.
func (s *InvitationService) Accept(ctx context.Context, caller auth.Identity, in AcceptInvitationInput) (result *InvitationResult, err error) {
	ctx = ensureContext(ctx)
	var projectID string
	defer func() {
		s.observe(ctx, AuditActionInvitationAccept, caller, projectID, result, err)
	}()

	if caller.IsZero() {
		return nil, appErrors.ErrUnauthorized
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		invitation, err := s.lockOwnInvitation(ctx, tx, caller, in.InvitationID)
		if err != nil || invitation == nil {
			result = notYours(in.InvitationID, err)
			return err
		}
		projectID = invitation.ProjectID

		if in.ProjectID != "" && in.ProjectID != invitation.ProjectID {
			return ErrProjectMismatch
		}

		project, err := s.requireProject(ctx, invitation.ProjectID)
		if err != nil {
			return err
		}

		member, err := tx.Users().FindByID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load caller: %w", err)
		}

		if err := tx.Invitations().Delete(ctx, invitation.ID); err != nil {
			return fmt.Errorf("delete invitation: %w", err)
		}

		// Runs under the transaction's write lock, which SQLite holds database-wide.
		if project.AddMember(memberFromUser(member)) {
			if err := s.projects.UpdateProject(ctx, project); err != nil {
				return ErrProjectService.WithInternal(err)
			}
		} else {
			s.log.Debug("caller already a project member",
				zap.String("project_id", project.ID),
				zap.String("user_id", caller.UserID))
		}

		result = invitationSucceeded("")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("invitation service: accept: %w", err)
	}
	return result, nil
}

// Reject discards the invitation without contacting the Project service.
func (s *InvitationService) Reject(ctx context.Context, caller auth.Identity, invitationID string) (result *InvitationResult, err error) {
	ctx = ensureContext(ctx)
	var projectID string
	defer func() {
		s.observe(ctx, AuditActionInvitationReject, caller, projectID, result, err)
	}()

	if caller.IsZero() {
		return nil, appErrors.ErrUnauthorized
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		invitation, err := s.lockOwnInvitation(ctx, tx, caller, invitationID)
		if err != nil || invitation == nil {
			result = notYours(invitationID, err)
			return err
		}
		projectID = invitation.ProjectID

		if err := tx.Invitations().Delete(ctx, invitation.ID); err != nil {
			return fmt.Errorf("delete invitation: %w", err)
		}
		result = invitationSucceeded(invitation.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("invitation service: reject: %w", err)
	}
	return result, nil
}

// lockOwnInvitation loads and locks the invitation. It returns a nil
// invitation and nil error when the invitation belongs to someone else.
func (s *InvitationService) lockOwnInvitation(ctx context.Context, tx *repository.Store, caller auth.Identity, id string) (*models.Invitation, error) {
	invitation, err := tx.Invitations().FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	if !invitation.IsAddressedTo(caller.UserID) {
		return nil, nil
	}
	return invitation, nil
}

func notYours(invitationID string, err error) *InvitationResult {
	if err != nil {
		return nil
	}
	return invitationFailed(invitationID, InvitationNotYours)
}

// requireProject fetches the project. Any lookup failure, or a response for
// a different project, is reported as ErrProjectNotFound.
func (s *InvitationService) requireProject(ctx context.Context, id string) (*projects.Project, error) {
	project, err := s.projects.FindProjectByID(ctx, id)
	if err != nil {
		if !errors.Is(err, projects.ErrProjectNotFound) {
			s.log.Warn("project lookup failed", zap.String("project_id", id), zap.Error(err))
		}
		return nil, ErrProjectNotFound.WithInternal(err)
	}
	if project == nil || project.ID != id {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func requireUser(ctx context.Context, tx *repository.Store, id string) error {
	if _, err := tx.Users().FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	return nil
}

// enrich joins every invitation with its project. Projects the Project
// service no longer knows are returned with their id only; any other
// failure aborts the listing.
func (s *InvitationService) enrich(ctx context.Context, invitations []models.Invitation) ([]InvitationDetails, error) {
	cache := make(map[string]*projects.Project)
	details := make([]InvitationDetails, 0, len(invitations))

	for i := range invitations {
		invitation := &invitations[i]

		project, ok := cache[invitation.ProjectID]
		if !ok {
			found, err := s.projects.FindProjectByID(ctx, invitation.ProjectID)
			switch {
			case err == nil && found != nil:
				project = found
			case err == nil, errors.Is(err, projects.ErrProjectNotFound):
				s.log.Warn("invitation references unknown project",
					zap.String("invitation_id", invitation.ID),
					zap.String("project_id", invitation.ProjectID))
				project = &projects.Project{ID: invitation.ProjectID}
			default:
				return nil, ErrProjectService.WithInternal(err)
			}
			cache[invitation.ProjectID] = project
		}

		details = append(details, InvitationDetails{
			ID:               invitation.ID,
			InvitedUser:      invitation.InvitedUser,
			InvitationSender: invitation.InvitationSender,
			Project:          project,
			CreatedAt:        invitation.CreatedAt,
		})
	}
	return details, nil
}

func (s *InvitationService) observe(ctx context.Context, action string, caller auth.Identity, projectID string, result *InvitationResult, err error) {
	var status OperationStatus
	entry := AuditEntry{
		Action:   action,
		Resource: "invitation",
		UserID:   caller.UserID,
		Username: caller.Username,
	}
	metadata := map[string]any{}
	if projectID != "" {
		metadata["projectId"] = projectID
	}
	if result != nil {
		status = result.Status
		if result.InvitationID != "" {
			metadata["invitationId"] = result.InvitationID
		}
		if len(result.Errors) > 0 {
			metadata["errorCode"] = string(result.Errors[0].ErrorCode)
			metadata["invitationId"] = result.Errors[0].FailedInvitationID
		}
	}
	if len(metadata) > 0 {
		entry.Metadata = metadata
	}
	entry.Result = resultLabel(status, err)

	operation := action[len("invitation."):]
	metrics.InvitationOperations.WithLabelValues(operation, entry.Result).Inc()
	recordAudit(s.audit, ctx, entry)
}
