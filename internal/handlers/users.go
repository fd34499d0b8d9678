package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heavenboards/user-service/internal/services"
	"github.com/heavenboards/user-service/pkg/errors"
	"github.com/heavenboards/user-service/pkg/response"
)

// UserHandler serves account lookups.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/v1/user/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		response.Error(c, errors.NewBadRequest("username is required"))
		return
	}

	user, err := h.users.FindByUsername(requestContext(c), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

// GET|POST /api/v1/user with a JSON array of ids as body.
func (h *UserHandler) FindByIDs(c *gin.Context) {
	var ids []string
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.Error(c, errors.NewBadRequest("body must be a JSON array of user ids"))
		return
	}

	users, err := h.users.FindByIDs(requestContext(c), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTOs(users))
}
