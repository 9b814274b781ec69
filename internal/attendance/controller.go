package attendance

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/utils/response"
	"eventpass/internal/tickets"
	"eventpass/pkg/logger"
)

const (
	codeRoomNotFound         = "ROOM_NOT_FOUND"
	codeTicketNotFound       = "TICKET_NOT_FOUND"
	codeTicketNotPermitted   = "TICKET_NOT_PERMITTED"
	codeWristbandNotFound    = "WRISTBAND_NOT_FOUND"
	codeWristbandAlreadyUsed = "WRISTBAND_ALREADY_BOUND"
	codeInvalidTicketData    = "INVALID_RESERVATION_DATA"
)

type Controller interface {
	Track(c *gin.Context)
	GuestCount(c *gin.Context)
	Lookup(c *gin.Context)
	BindWristband(c *gin.Context)
	GetWristband(c *gin.Context)
}

type controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service, log *logger.Logger) Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &controller{service: service, log: log}
}

// Track handles POST /rooms/:id/track
func (ctrl *controller) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "The track request is malformed.")
		return
	}
	op, ok := ParseOperation(req.Operation)
	if !ok {
		response.BadRequest(c, "Operation must be enter or exit.")
		return
	}

	accepted, err := ctrl.service.CheckInOut(c.Request.Context(), op, c.Param("id"), req.TicketID)
	if err != nil {
		ctrl.writeError(c, err)
		return
	}
	if !accepted {
		response.Exception(c, http.StatusBadRequest, codeTicketNotPermitted, "This ticket cannot be used for this room.")
		return
	}

	response.Success(c, http.StatusOK, "track", gin.H{
		"operation": op,
		"room_id":   c.Param("id"),
		"ticket_id": req.TicketID,
	})
}

// GuestCount handles GET /rooms/:id/guests
func (ctrl *controller) GuestCount(c *gin.Context) {
	count, err := ctrl.service.GuestCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "guest_count", gin.H{
		"room_id": c.Param("id"),
		"count":   count,
	})
}

// Lookup handles GET /tickets/:id/lookup
func (ctrl *controller) Lookup(c *gin.Context) {
	result, err := ctrl.service.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "lookup", gin.H{
		"tracks":      result.Tracks,
		"ticket":      result.Ticket,
		"reserve_id":  result.ReservationID,
		"reservation": result.Reservation,
	})
}

// BindWristband handles POST /wristbands
func (ctrl *controller) BindWristband(c *gin.Context) {
	var req BindWristbandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "The wristband request is malformed.")
		return
	}

	bound, err := ctrl.service.BindWristband(c.Request.Context(), req.WristbandID, req.ReserverID, req.TicketID)
	if err != nil {
		ctrl.writeError(c, err)
		return
	}
	if !bound {
		response.Exception(c, http.StatusBadRequest, codeWristbandAlreadyUsed, "This wristband is already in use.")
		return
	}

	response.Success(c, http.StatusCreated, "wristband", gin.H{
		"wristband_id": req.WristbandID,
		"ticket_id":    req.TicketID,
	})
}

// GetWristband handles GET /wristbands/:id
func (ctrl *controller) GetWristband(c *gin.Context) {
	wristband, err := ctrl.service.GetWristband(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "wristband", gin.H{"wristband": wristband})
}

func (ctrl *controller) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		response.Exception(c, http.StatusNotFound, codeRoomNotFound, "The room does not exist.")
	case errors.Is(err, tickets.ErrTicketNotFound):
		response.Exception(c, http.StatusNotFound, codeTicketNotFound, "The ticket does not exist.")
	case errors.Is(err, ErrWristbandNotFound):
		response.Exception(c, http.StatusNotFound, codeWristbandNotFound, "The wristband is not bound.")
	case errors.Is(err, tickets.ErrInvalidTicketData):
		response.Exception(c, http.StatusBadRequest, codeInvalidTicketData, "This ticket cannot be processed.")
	default:
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.Internal(c)
	}
}
