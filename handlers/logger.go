package handlers

import (
	"travellocal/middleware"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped Zap logger from the Gin context or
// falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// authContext returns the caller identity set by the auth middleware.
func authContext(c *gin.Context) (userID, token string) {
	return c.GetString(middleware.UserIDKey), c.GetString(middleware.TokenKey)
}
