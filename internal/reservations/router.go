package reservations

import (
	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
)

// PermissionForceReserve lets staff reserve on behalf of walk-in guests
const PermissionForceReserve = "force_reserve"

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller, guard *middleware.Guard, limit gin.HandlerFunc) {
	reservations := router.Group("/reservations")
	reservations.Use(guard.RequireUser())
	{
		reservations.GET("", controller.ListReservations)     // GET /api/v1/reservations
		reservations.GET("/:id", controller.GetReservation)   // GET /api/v1/reservations/:id
		reservations.POST("", limit, controller.Reserve)      // POST /api/v1/reservations
		reservations.PUT("/:id", limit, controller.Modify)    // PUT /api/v1/reservations/:id
		reservations.DELETE("/:id", limit, controller.Cancel) // DELETE /api/v1/reservations/:id
		reservations.POST("/force", guard.RequirePermission(PermissionForceReserve), controller.ForceReserve)
	}
}
