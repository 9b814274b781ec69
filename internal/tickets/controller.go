package tickets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/utils/response"
)

type Controller interface {
	GetTicketType(c *gin.Context)
}

type controller struct {
	registry *Registry
}

func NewController(registry *Registry) Controller {
	return &controller{registry: registry}
}

func (ctrl *controller) GetTicketType(c *gin.Context) {
	ticketType, err := ctrl.registry.TicketType(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrTicketTypeNotFound) {
			response.Exception(c, http.StatusNotFound, "TICKET_TYPE_NOT_FOUND", "The ticket type does not exist.")
			return
		}
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, "ticket_type", gin.H{"ticket_type": ticketType.Summary(nil)})
}
