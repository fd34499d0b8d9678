package api

import (
	"github.com/gin-gonic/gin"

	"github.com/heavenboards/user-service/internal/handlers"
)

func registerAuthRoutes(v1 *gin.RouterGroup, handler *handlers.AuthHandler, limit gin.HandlerFunc) {
	auth := v1.Group("/auth")
	auth.Use(limit)
	{
		auth.POST("/register", handler.Register)
		auth.POST("/authenticate", handler.Authenticate)
	}
}
