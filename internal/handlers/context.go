package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	iauth "github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/middleware"
	"github.com/heavenboards/user-service/pkg/errors"
	"github.com/heavenboards/user-service/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// callerIdentity returns the authenticated caller or writes a 401 envelope.
func callerIdentity(c *gin.Context) (iauth.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return iauth.Identity{}, false
	}
	return identity, true
}
