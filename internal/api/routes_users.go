package api

import (
	"github.com/gin-gonic/gin"

	"github.com/heavenboards/user-service/internal/handlers"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	users := api.Group("/user")
	{
		users.GET("/:username", handler.GetByUsername)
		// The id list travels in the body; POST serves clients that cannot send a GET body.
		users.GET("", handler.FindByIDs)
		users.POST("", handler.FindByIDs)
	}
}
