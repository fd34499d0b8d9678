package services

// OperationStatus is the outcome flag carried by operation results.
type OperationStatus string

const (
	StatusOK     OperationStatus = "OK"
	StatusFailed OperationStatus = "FAILED"
)

// AuthErrorCode enumerates expected registration and authentication failures.
type AuthErrorCode string

const (
	AuthUsernameAlreadyExist    AuthErrorCode = "USERNAME_ALREADY_EXIST"
	AuthUsernameNotFound        AuthErrorCode = "USERNAME_NOT_FOUND"
	AuthInvalidUsernamePassword AuthErrorCode = "INVALID_USERNAME_PASSWORD"
)

// InvitationErrorCode enumerates expected invitation lifecycle failures.
type InvitationErrorCode string

const (
	InvitationAlreadyCreated InvitationErrorCode = "INVITATION_ALREADY_CREATED"
	InvitationNotYours       InvitationErrorCode = "THIS_IS_NOT_YOUR_INVITATION"
)

// AuthenticationError is a single structured failure of an auth operation.
type AuthenticationError struct {
	ErrorCode AuthErrorCode `json:"errorCode"`
}

// AuthenticationResult is returned by register and authenticate. Expected
// business failures are reported here with StatusFailed rather than as errors.
type AuthenticationResult struct {
	Status OperationStatus       `json:"status"`
	UserID string                `json:"userId,omitempty"`
	Token  string                `json:"token,omitempty"`
	Errors []AuthenticationError `json:"errors,omitempty"`
}

// InvitationError is a single structured failure of an invitation operation.
type InvitationError struct {
	FailedInvitationID string              `json:"failedInvitationId,omitempty"`
	ErrorCode          InvitationErrorCode `json:"errorCode"`
}

// InvitationResult is returned by create, accept and reject.
type InvitationResult struct {
	Status       OperationStatus   `json:"status"`
	InvitationID string            `json:"invitationId,omitempty"`
	Errors       []InvitationError `json:"errors,omitempty"`
}

func authSucceeded(userID, token string) *AuthenticationResult {
	return &AuthenticationResult{Status: StatusOK, UserID: userID, Token: token}
}

func authFailed(code AuthErrorCode) *AuthenticationResult {
	return &AuthenticationResult{
		Status: StatusFailed,
		Errors: []AuthenticationError{{ErrorCode: code}},
	}
}

func invitationSucceeded(invitationID string) *InvitationResult {
	return &InvitationResult{Status: StatusOK, InvitationID: invitationID}
}

func invitationFailed(invitationID string, code InvitationErrorCode) *InvitationResult {
	return &InvitationResult{
		Status: StatusFailed,
		Errors: []InvitationError{{FailedInvitationID: invitationID, ErrorCode: code}},
	}
}
