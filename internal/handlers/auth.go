package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heavenboards/user-service/internal/services"
	"github.com/heavenboards/user-service/pkg/response"
)

// AuthHandler serves registration and authentication.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64,username"`
	Password  string `json:"password" validate:"required,min=6,max=72,maxbytes=72"`
	FirstName string `json:"firstName" validate:"max=128"`
	LastName  string `json:"lastName" validate:"max=128"`
}

type authenticateRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72,maxbytes=72"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Register(requestContext(c), services.RegisterInput{
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/v1/auth/authenticate
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Authenticate(requestContext(c), services.AuthenticateInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
