package attendance

import (
	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
)

// Staff permissions checked by the permission store
const (
	PermissionTrack     = "track"
	PermissionLookup    = "lookup"
	PermissionWristband = "wristband"
)

func SetupAttendanceRoutes(router *gin.RouterGroup, controller Controller, guard *middleware.Guard, limit gin.HandlerFunc) {
	rooms := router.Group("/rooms")
	rooms.Use(guard.RequireUser())
	{
		rooms.POST("/:id/track", limit, guard.RequirePermission(PermissionTrack), controller.Track) // POST /api/v1/rooms/:id/track
		rooms.GET("/:id/guests", controller.GuestCount)                                             // GET /api/v1/rooms/:id/guests
	}

	lookup := router.Group("/tickets")
	lookup.Use(guard.RequireUser(), guard.RequirePermission(PermissionLookup))
	{
		lookup.GET("/:id/lookup", controller.Lookup) // GET /api/v1/tickets/:id/lookup
	}

	wristbands := router.Group("/wristbands")
	wristbands.Use(guard.RequireUser())
	{
		wristbands.POST("", guard.RequirePermission(PermissionWristband), controller.BindWristband) // POST /api/v1/wristbands
		wristbands.GET("/:id", guard.RequirePermission(PermissionLookup), controller.GetWristband)  // GET /api/v1/wristbands/:id
	}
}
