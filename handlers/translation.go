package handlers

import (
	"context"
	"net/http"

	"travellocal/models"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Translator runs the translation fallback chain.
type Translator interface {
	Translate(ctx context.Context, userID string, req models.TranslateRequest) models.TranslationEntry
	History(ctx context.Context, userID string) ([]models.TranslationEntry, string, error)
}

// LanguageStore holds the user's selected app language.
type LanguageStore interface {
	SetSelectedLanguage(ctx context.Context, userID, lang string) error
	GetSelectedLanguage(ctx context.Context, userID string) (string, error)
}

type TranslationHandler struct {
	svc       Translator
	languages LanguageStore
}

func NewTranslationHandler(svc Translator, languages LanguageStore) *TranslationHandler {
	return &TranslationHandler{svc: svc, languages: languages}
}

// TranslateHandler translates text. Without a target the user's selected
// language is used, then Accept-Language.
func (h *TranslationHandler) TranslateHandler(c *gin.Context) {
	var req models.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
		return
	}
	userID, _ := authContext(c)
	if req.Target == "" {
		req.Target = preferredLanguage(c, h.languages, userID)
	}

	entry := h.svc.Translate(c.Request.Context(), userID, req)
	c.JSON(http.StatusOK, entry)
}

// HistoryHandler returns the translation history, newest first.
func (h *TranslationHandler) HistoryHandler(c *gin.Context) {
	userID, _ := authContext(c)
	history, reuse, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		getLogger(c).Error("Failed to read translation history", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, utils.MsgInternal, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "reuseText": reuse})
}

// preferredLanguage is the stored selectedLanguage or the Accept-Language match.
func preferredLanguage(c *gin.Context, languages LanguageStore, userID string) string {
	if languages != nil && userID != "" {
		if lang, err := languages.GetSelectedLanguage(c.Request.Context(), userID); err == nil && lang != "" {
			return lang
		}
	}
	return utils.MatchLanguage(c.GetHeader("Accept-Language"))
}
