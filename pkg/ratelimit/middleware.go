package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"eventpass/internal/shared/middleware"
	"eventpass/internal/shared/utils/response"
	"eventpass/pkg/logger"
)

// Middleware limits requests of one class. Authenticated callers are keyed by
// user id, everyone else by client IP.
func Middleware(rateLimiter *RateLimiter, limitType RateLimitType, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}

	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		clientID := clientIP
		if userID, ok := middleware.GetUserID(c); ok {
			clientID = "user:" + userID
		}

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientID, limitType)
		if err != nil {
			// fail open
			log.WithError(err).Logger.WarnContext(c.Request.Context(), "rate limit check failed",
				"limit_type", string(limitType))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.AbortWithException(c, http.StatusTooManyRequests, response.CodeRateLimited,
				"Too many requests. Please slow down.")
			return
		}

		c.Next()
	}
}

// ForPath picks the limit class for routes registered without an explicit one
func ForPath(path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/metrics"):
		return RateLimitTypeHealth
	case strings.Contains(path, "/events"),
		strings.Contains(path, "/ticket-types"):
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}

// PathMiddleware applies the class chosen by ForPath
func PathMiddleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	handlers := map[RateLimitType]gin.HandlerFunc{}
	for _, t := range []RateLimitType{RateLimitTypeHealth, RateLimitTypePublic, RateLimitTypeDefault} {
		handlers[t] = Middleware(rateLimiter, t, log)
	}
	return func(c *gin.Context) {
		handlers[ForPath(c.FullPath())](c)
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
