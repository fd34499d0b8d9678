package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/app"
	iauth "github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/handlers"
	"github.com/heavenboards/user-service/internal/middleware"
	"github.com/heavenboards/user-service/internal/monitoring"
	"github.com/heavenboards/user-service/internal/monitoring/checks"
	"github.com/heavenboards/user-service/internal/repository"
	"github.com/heavenboards/user-service/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and services, and
// registers every route under /api/v1 plus health and metrics.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, directory services.ProjectDirectory, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, errors.New("database handle must be provided")
	}
	if jwt == nil {
		return nil, errors.New("jwt service must be provided")
	}
	if directory == nil {
		return nil, errors.New("project directory must be provided")
	}
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}

	store, err := repository.New(db)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(store)
	if err != nil {
		return nil, err
	}
	authSvc, err := services.NewAuthService(store, cfg.Auth.PasswordHasher(), jwt, services.WithAuthAudit(audit))
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	userSvc, err := services.NewUserService(store)
	if err != nil {
		return nil, err
	}
	invitationSvc, err := services.NewInvitationService(store, directory, services.WithInvitationAudit(audit))
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))
	r.Use(middleware.RequestActor())

	health := monitoring.NewHealthManager()
	health.RegisterLiveness(checks.Database(db))
	if prober, ok := directory.(checks.Prober); ok {
		health.RegisterReadiness(checks.Projects(prober))
	}
	registerHealthRoutes(r, health, cfg.Monitoring)

	v1 := r.Group("/api/v1")

	registerAuthRoutes(v1, handlers.NewAuthHandler(authSvc), middleware.RateLimit(middleware.RateLimitConfig{
		Requests: cfg.Server.RateLimit.Requests,
		Window:   cfg.Server.RateLimit.Window,
		Burst:    cfg.Server.RateLimit.Burst,
	}))

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwt, userSvc))

	registerUserRoutes(protected, handlers.NewUserHandler(userSvc))
	registerInvitationRoutes(protected, handlers.NewInvitationHandler(invitationSvc))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
