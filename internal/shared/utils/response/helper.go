package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes {"type": operation, ...fields}
func Success(c *gin.Context, code int, operation string, fields gin.H) {
	body := gin.H{"type": operation}
	for k, v := range fields {
		if k == "type" {
			continue
		}
		body[k] = v
	}
	c.JSON(code, body)
}

// Exception writes {"exception": code, "display_string": message}
func Exception(c *gin.Context, status int, exception, display string) {
	c.JSON(status, ExceptionResponse{
		Exception:     exception,
		DisplayString: display,
	})
}

// AbortWithException writes the failure envelope and stops the handler chain
func AbortWithException(c *gin.Context, status int, exception, display string) {
	c.AbortWithStatusJSON(status, ExceptionResponse{
		Exception:     exception,
		DisplayString: display,
	})
}

// BadRequest reports a malformed request body or parameter
func BadRequest(c *gin.Context, display string) {
	Exception(c, http.StatusBadRequest, CodeInvalidRequest, display)
}

// Internal hides infrastructure failures behind a stable code
func Internal(c *gin.Context) {
	Exception(c, http.StatusInternalServerError, CodeInternalException, "Something went wrong. Please try again later.")
}
