package auth

import (
	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
)

func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, guard *middleware.Guard) {
	auth := rg.Group("/auth")
	auth.Use(guard.RequireUser())
	{
		auth.GET("/permissions", controller.GetPermissions) // GET /api/v1/auth/permissions
	}
}
