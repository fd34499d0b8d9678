package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/heavenboards/user-service/internal/auditctx"
	iauth "github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/projects"
	"github.com/heavenboards/user-service/internal/services"
	appErrors "github.com/heavenboards/user-service/pkg/errors"
	"github.com/heavenboards/user-service/pkg/logger"
	"github.com/heavenboards/user-service/pkg/response"
)

const (
	CtxIdentityKey = "authIdentity"
	CtxUserIDKey   = "userID"
)

// AccountLookup resolves the account a token was issued for. A missing account
// is reported as services.ErrUserNotFound.
type AccountLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Auth enforces bearer authentication. The token subject must name an
// existing account whose id matches the token's uid claim.
func Auth(jwt *iauth.JWTService, accounts AccountLookup) gin.HandlerFunc {
	log := logger.WithModule("auth")

	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		user, err := accounts.FindByUsername(ctx, claims.Subject)
		if err != nil && !errors.Is(err, services.ErrUserNotFound) {
			log.Error("token account lookup failed", zap.String("username", claims.Subject), zap.Error(err))
			response.Abort(c, appErrors.ErrInternalServer.WithInternal(err))
			return
		}
		if err != nil || user.ID != claims.UserID {
			log.Debug("token account rejected", zap.String("username", claims.Subject), zap.Error(err))
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		identity := iauth.Identity{
			UserID:   user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		}
		c.Set(CtxIdentityKey, identity)
		c.Set(CtxUserIDKey, identity.UserID)

		ctx = projects.WithBearerToken(ctx, token)
		ctx = auditctx.WithUser(ctx, identity.UserID, identity.Username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// IdentityFrom returns the caller resolved by Auth.
func IdentityFrom(c *gin.Context) (iauth.Identity, bool) {
	value, exists := c.Get(CtxIdentityKey)
	if !exists {
		return iauth.Identity{}, false
	}
	identity, ok := value.(iauth.Identity)
	return identity, ok && !identity.IsZero()
}

// RequestActor stores client metadata on the request context for the audit trail.
func RequestActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auditctx.WithActor(c.Request.Context(), auditctx.Actor{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
