package events

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/utils/response"
)

type Controller interface {
	GetEvent(c *gin.Context)
	GetAllEvents(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.Exception(c, http.StatusNotFound, CapacityEventNotFound.String(), CapacityEventNotFound.Message())
			return
		}
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, "event", gin.H{"event": event})
}

func (ctrl *controller) GetAllEvents(c *gin.Context) {
	events, err := ctrl.service.GetAllEvents(c.Request.Context())
	if err != nil {
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, "events", gin.H{"events": events})
}
