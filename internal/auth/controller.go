package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
	"eventpass/internal/shared/utils/response"
)

type Controller struct {
	permissions PermissionStore
}

func NewController(permissions PermissionStore) *Controller {
	return &Controller{permissions: permissions}
}

// GetPermissions handles GET /auth/permissions
func (c *Controller) GetPermissions(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.Exception(ctx, http.StatusUnauthorized, response.CodeUserAuthenticationFailed, "Please sign in again.")
		return
	}

	names, err := c.permissions.ListPermissions(ctx.Request.Context(), userID)
	if err != nil {
		response.Internal(ctx)
		return
	}
	if names == nil {
		names = []string{}
	}

	response.Success(ctx, http.StatusOK, "permissions", gin.H{
		"permissions": PermissionsResponse{UserID: userID, Permissions: names},
	})
}
