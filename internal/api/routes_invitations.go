package api

import (
	"github.com/gin-gonic/gin"

	"github.com/heavenboards/user-service/internal/handlers"
)

func registerInvitationRoutes(api *gin.RouterGroup, handler *handlers.InvitationHandler) {
	invitations := api.Group("/invitation")
	{
		invitations.POST("", handler.Create)
		invitations.GET("/received", handler.Received)
		invitations.GET("/sent", handler.Sent)
		invitations.POST("/accept", handler.Accept)
		invitations.POST("/reject", handler.Reject)
	}
}
