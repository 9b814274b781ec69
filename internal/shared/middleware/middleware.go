package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/utils/response"
	"eventpass/pkg/logger"
)

const userIDKey = "user_id"

// TokenVerifier turns a bearer token into a verified user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PermissionChecker reports whether a user holds a named permission
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, name string) (bool, error)
}

// Guard authenticates requests and checks permissions
type Guard struct {
	verifier    TokenVerifier
	permissions PermissionChecker
	log         *logger.Logger
}

func NewGuard(verifier TokenVerifier, permissions PermissionChecker, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Guard{verifier: verifier, permissions: permissions, log: log}
}

// RequireUser rejects requests without a valid bearer token
func (g *Guard) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			g.reject(c, response.CodeUserAuthenticationFailed, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			g.reject(c, response.CodeUserAuthenticationFailed, "malformed authorization header")
			return
		}

		userID, err := g.verifier.Verify(parts[1])
		if err != nil || userID == "" {
			g.reject(c, response.CodeUserAuthenticationFailed, "invalid token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequirePermission must run after RequireUser
func (g *Guard) RequirePermission(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			g.reject(c, response.CodeUserAuthenticationFailed, "no verified user")
			return
		}

		allowed, err := g.permissions.HasPermission(c.Request.Context(), userID, name)
		if err != nil {
			g.log.ErrorWithContext(c.Request.Context(), "Permission lookup failed", err, map[string]interface{}{
				"user_id":    userID,
				"permission": name,
			})
			response.Internal(c)
			c.Abort()
			return
		}
		if !allowed {
			g.reject(c, response.CodePermissionDenied, "missing permission "+name)
			return
		}

		c.Next()
	}
}

func (g *Guard) reject(c *gin.Context, code, reason string) {
	g.log.LogAuthFailure(c.Request.Context(), reason, c.ClientIP())

	display := "Please sign in again."
	if code == response.CodePermissionDenied {
		display = "You are not allowed to do this."
	}
	response.AbortWithException(c, http.StatusUnauthorized, code, display)
}

// GetUserID returns the id set by RequireUser
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}

// RequestLogger logs every request after it completes
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}
