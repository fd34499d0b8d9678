package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/heavenboards/user-service/pkg/crypto"
	appErrors "github.com/heavenboards/user-service/pkg/errors"
)

// Exceptional failures surfaced as error envelopes. Expected business
// failures are reported through operation results instead.
var (
	ErrUserNotFound = appErrors.New("USERNAME_NOT_FOUND", "User not found", http.StatusNotFound)

	ErrInvitationNotFound = appErrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)

	ErrProjectNotFound = appErrors.New("PROJECT_NOT_FOUND", "Project not found", http.StatusNotFound)

	ErrProjectService = appErrors.New("PROJECT_SERVICE_ERROR", "Project service request failed", http.StatusBadGateway)

	ErrPasswordTooLong = appErrors.NewBadRequest(fmt.Sprintf("password must be at most %d bytes", crypto.MaxPasswordBytes))

	ErrInvalidUserID = appErrors.NewBadRequest("each id must be a valid UUID")

	ErrProjectMismatch = appErrors.New("PROJECT_MISMATCH", "Project does not match the invitation", http.StatusBadRequest)
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func resultLabel(status OperationStatus, err error) string {
	if err != nil {
		return "error"
	}
	return string(status)
}
