package users

import (
	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
)

func SetupUserRoutes(router *gin.RouterGroup, controller *Controller, guard *middleware.Guard) {
	users := router.Group("/users")
	users.Use(guard.RequireUser())
	{
		users.POST("/register", controller.Register) // POST /api/v1/users/register
		users.GET("/me", controller.GetProfile)      // GET /api/v1/users/me
	}
}
