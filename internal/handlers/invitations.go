package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heavenboards/user-service/internal/services"
	"github.com/heavenboards/user-service/pkg/response"
)

// InvitationHandler serves the invitation lifecycle for the authenticated caller.
type InvitationHandler struct {
	invitations *services.InvitationService
}

func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type createInvitationRequest struct {
	InvitedUser idRef `json:"invitedUser"`
	Project     idRef `json:"project"`
}

type acceptInvitationRequest struct {
	ID      string `json:"id" validate:"required,uuid"`
	Project *idRef `json:"project"`
}

type rejectInvitationRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// POST /api/v1/invitation
func (h *InvitationHandler) Create(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req createInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.Create(requestContext(c), caller, services.CreateInvitationInput{
		InvitedUserID: req.InvitedUser.ID,
		ProjectID:     req.Project.ID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/invitation/received
func (h *InvitationHandler) Received(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	details, err := h.invitations.FindReceived(requestContext(c), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvitationDTOs(details))
}

// GET /api/v1/invitation/sent
func (h *InvitationHandler) Sent(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	details, err := h.invitations.FindSent(requestContext(c), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvitationDTOs(details))
}

// POST /api/v1/invitation/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req acceptInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.AcceptInvitationInput{InvitationID: req.ID}
	if req.Project != nil {
		input.ProjectID = req.Project.ID
	}

	result, err := h.invitations.Accept(requestContext(c), caller, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/v1/invitation/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req rejectInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.Reject(requestContext(c), caller, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
