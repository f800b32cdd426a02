package handlers

import (
	"net/http"
	"strconv"

	"travellocal/services/unlock"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
)

type TourHandler struct {
	svc unlock.Service
}

func NewTourHandler(svc unlock.Service) *TourHandler {
	return &TourHandler{svc: svc}
}

func tourID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, "invalid tour program id")
		return 0, false
	}
	return id, true
}

// GetScheduleHandler returns the schedule, masked unless unlocked.
func (h *TourHandler) GetScheduleHandler(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	userID, token := authContext(c)
	view, err := h.svc.Schedule(c.Request.Context(), userID, token, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetQuoteHandler returns the balance and what remains after an unlock.
func (h *TourHandler) GetQuoteHandler(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	userID, token := authContext(c)
	quote, err := h.svc.Quote(c.Request.Context(), userID, token, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// UnlockHandler spends points to unlock the schedule.
func (h *TourHandler) UnlockHandler(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	userID, token := authContext(c)
	res, err := h.svc.UnlockWithPoints(c.Request.Context(), userID, token, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreatePaymentHandler starts the card payment hand-off.
func (h *TourHandler) CreatePaymentHandler(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	userID, token := authContext(c)
	intent, err := h.svc.CreatePayment(c.Request.Context(), userID, token, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// ConfirmPaymentHandler unlocks the schedule after a successful payment.
func (h *TourHandler) ConfirmPaymentHandler(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	var input struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
		return
	}
	userID, token := authContext(c)
	res, err := h.svc.ConfirmPayment(c.Request.Context(), userID, token, id, input.PaymentIntentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
