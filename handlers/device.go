package handlers

import (
	"net/http"

	"travellocal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DeviceHandler struct {
	languages LanguageStore
}

func NewDeviceHandler(languages LanguageStore) *DeviceHandler {
	return &DeviceHandler{languages: languages}
}

// SetLanguageHandler stores the selected app language, matched onto a
// supported language.
func (h *DeviceHandler) SetLanguageHandler(c *gin.Context) {
	var input struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
		return
	}
	userID, _ := authContext(c)
	lang := utils.MatchLanguage(input.Language)
	if err := h.languages.SetSelectedLanguage(c.Request.Context(), userID, lang); err != nil {
		getLogger(c).Error("Failed to store selected language", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, utils.MsgInternal, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}

// GetLanguageHandler returns the selected language, defaulting to the
// Accept-Language match.
func (h *DeviceHandler) GetLanguageHandler(c *gin.Context) {
	userID, _ := authContext(c)
	c.JSON(http.StatusOK, gin.H{"language": preferredLanguage(c, h.languages, userID)})
}
