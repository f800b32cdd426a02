package handlers

import (
	"errors"
	"net/http"

	"travellocal/services/backend"
	"travellocal/services/unlock"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps service errors onto localized JSON error responses.
func writeError(c *gin.Context, err error) {
	var unlockErr *unlock.Error
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		utils.JSONError(c, http.StatusUnauthorized, utils.MsgLoginRequired, "")
	case errors.Is(err, backend.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, utils.MsgNotFound, "")
	case errors.As(err, &unlockErr):
		writeUnlockError(c, unlockErr)
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		utils.JSONError(c, apiErr.Status, utils.MsgInvalidRequest, apiErr.Message)
	default:
		getLogger(c).Error("Upstream call failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, utils.MsgNetwork, err.Error())
	}
}

func writeUnlockError(c *gin.Context, err *unlock.Error) {
	switch err.Code {
	case unlock.CodeInsufficientPoints:
		utils.JSONError(c, http.StatusPaymentRequired, utils.MsgInsufficientPts, err.Error())
	case unlock.CodeAlreadyUnlocked:
		utils.JSONError(c, http.StatusConflict, utils.MsgScheduleUnlocked, err.Error())
	case unlock.CodePaymentPending, unlock.CodeInProgress:
		utils.JSONError(c, http.StatusConflict, utils.MsgPaymentPending, err.Error())
	case unlock.CodePaymentMismatch:
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
	default:
		utils.JSONError(c, http.StatusServiceUnavailable, utils.MsgInternal, err.Error())
	}
}
