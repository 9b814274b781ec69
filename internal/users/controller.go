package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"eventpass/internal/shared/middleware"
	"eventpass/internal/shared/utils/response"
)

const (
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeUserNotFound      = "USER_NOT_FOUND"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// Register handles POST /users/register
func (c *Controller) Register(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.Exception(ctx, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body.")
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.BadRequest(ctx, "First and last name are required.")
		return
	}

	user, err := c.service.Register(ctx.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			response.Exception(ctx, http.StatusConflict, CodeAlreadyRegistered, "This account is already registered.")
			return
		}
		response.Internal(ctx)
		return
	}

	response.Success(ctx, http.StatusCreated, "register", gin.H{"user": user})
}

// GetProfile handles GET /users/me
func (c *Controller) GetProfile(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.Exception(ctx, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	user, err := c.service.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Exception(ctx, http.StatusNotFound, CodeUserNotFound, "Please register first.")
			return
		}
		response.Internal(ctx)
		return
	}

	response.Success(ctx, http.StatusOK, "profile", gin.H{"user": user})
}
