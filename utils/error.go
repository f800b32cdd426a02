package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   Localize(c.GetHeader("Accept-Language"), MsgInternal),
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response. The message key is
// localized against the request's Accept-Language header.
func JSONError(c *gin.Context, status int, key MessageKey, details string) {
	GetLogger().Warn(string(key), zap.Int("status", status), zap.String("details", details))
	c.JSON(status, ErrorResponse{
		Error:   Localize(c.GetHeader("Accept-Language"), key),
		Details: details,
	})
}
