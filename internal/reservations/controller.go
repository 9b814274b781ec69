package reservations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
	"eventpass/internal/shared/utils/response"
	"eventpass/internal/tickets"
	"eventpass/pkg/logger"
)

type Controller interface {
	Reserve(c *gin.Context)
	ForceReserve(c *gin.Context)
	Modify(c *gin.Context)
	Cancel(c *gin.Context)
	GetReservation(c *gin.Context)
	ListReservations(c *gin.Context)
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

// Reserve handles POST /reservations
func (ctrl *controller) Reserve(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Exception(c, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "The reservation request is malformed.")
		return
	}

	result, err := ctrl.service.Reserve(c.Request.Context(), userID, req)
	ctrl.writeReserve(c, "reserve", result, err)
}

// ForceReserve handles POST /reservations/force
func (ctrl *controller) ForceReserve(c *gin.Context) {
	var req ForceReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "The reservation request is malformed.")
		return
	}

	result, err := ctrl.service.ForceReserve(c.Request.Context(), req)
	ctrl.writeReserve(c, "force_reserve", result, err)
}

func (ctrl *controller) writeReserve(c *gin.Context, operation string, result *ReserveResult, err error) {
	if err != nil {
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.Internal(c)
		return
	}
	if result.Status != ReserveReserved {
		response.Exception(c, result.Status.HTTPStatus(), result.Status.String(), result.Status.Message())
		return
	}

	code := result.Status.HTTPStatus()
	if result.Replayed {
		code = http.StatusOK
	}
	response.Success(c, code, operation, gin.H{
		"status":      result.Status,
		"reservation": result.Reservation.ToResponse(result.Tickets),
	})
}

// Modify handles PUT /reservations/:id
func (ctrl *controller) Modify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Exception(c, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	var req ModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "The modification request is malformed.")
		return
	}

	result, err := ctrl.service.Modify(c.Request.Context(), userID, c.Param("id"), req)
	ctrl.writeModify(c, "modify", result, err)
}

// Cancel handles DELETE /reservations/:id
func (ctrl *controller) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Exception(c, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	result, err := ctrl.service.Cancel(c.Request.Context(), userID, c.Param("id"))
	ctrl.writeModify(c, "cancel", result, err)
}

func (ctrl *controller) writeModify(c *gin.Context, operation string, result *ModifyResult, err error) {
	if err != nil {
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.Internal(c)
		return
	}
	if result.Status != ModifyModified && result.Status != ModifyCancelled {
		response.Exception(c, result.Status.HTTPStatus(), result.Status.String(), result.Status.Message())
		return
	}

	fields := gin.H{"status": result.Status, "delta": result.Delta}
	if result.Status == ModifyModified {
		fields["reservation"] = result.Reservation.ToResponse(result.Tickets)
	} else {
		fields["reservation_id"] = result.Reservation.ID
	}
	response.Success(c, result.Status.HTTPStatus(), operation, fields)
}

// GetReservation handles GET /reservations/:id
func (ctrl *controller) GetReservation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Exception(c, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	reservation, err := ctrl.service.GetReservation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			response.Exception(c, http.StatusNotFound, ModifyReservationNotFound.String(), ModifyReservationNotFound.Message())
		case errors.Is(err, tickets.ErrInvalidTicketData):
			response.Exception(c, http.StatusBadRequest, ModifyInvalidReservationData.String(), ModifyInvalidReservationData.Message())
		default:
			ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
			response.Internal(c)
		}
		return
	}

	response.Success(c, http.StatusOK, "reservation", gin.H{"reservation": reservation})
}

// ListReservations handles GET /reservations
func (ctrl *controller) ListReservations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Exception(c, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	reservations, err := ctrl.service.ListReservations(c.Request.Context(), userID)
	if err != nil {
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, "reservations", gin.H{"reservations": reservations})
}
