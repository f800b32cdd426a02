package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"travellocal/models"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
)

// CalendarService builds month grids and relays status changes.
type CalendarService interface {
	Month(ctx context.Context, token string, year, month int, selected string) (*models.CalendarResponse, error)
	UpdateStatus(ctx context.Context, token string, reservationID int, status models.RequestStatus) error
}

type CalendarHandler struct {
	svc CalendarService
	loc *time.Location
	now func() time.Time
}

// NewCalendarHandler creates the calendar endpoints. loc decides the default month.
func NewCalendarHandler(svc CalendarService, loc *time.Location) *CalendarHandler {
	return &CalendarHandler{svc: svc, loc: loc, now: time.Now}
}

// GetMonthHandler returns the grid for ?year=&month= (default: current month)
// and the reservations of ?selected=YYYY-MM-DD.
func (h *CalendarHandler) GetMonthHandler(c *gin.Context) {
	_, token := authContext(c)
	today := h.now().In(h.loc)

	year, err := intQuery(c, "year", today.Year())
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, "year must be a number")
		return
	}
	month, err := intQuery(c, "month", int(today.Month()))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, "month must be a number")
		return
	}

	resp, err := h.svc.Month(c.Request.Context(), token, year, month, c.Query("selected"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatusHandler relays an ACCEPTED/REJECTED decision on a reservation.
func (h *CalendarHandler) UpdateStatusHandler(c *gin.Context) {
	_, token := authContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, "invalid reservation id")
		return
	}
	var input models.ReservationStatusUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
		return
	}
	if !input.Status.IsDecision() {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, "status must be ACCEPTED or REJECTED, got "+string(input.Status))
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), token, id, input.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": input.Status})
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
