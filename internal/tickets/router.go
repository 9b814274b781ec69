package tickets

import "github.com/gin-gonic/gin"

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller) {
	ticketTypes := router.Group("/ticket-types")
	{
		ticketTypes.GET("/:id", controller.GetTicketType) // GET /api/v1/ticket-types/:id
	}
}
