package handlers

import (
	"context"
	"net/http"
	"strconv"

	"travellocal/models"

	"github.com/gin-gonic/gin"
)

// TourismSource reads the public tourism API.
type TourismSource interface {
	AreaBased(ctx context.Context, areaCode string, page, rows int) models.TourismPage
	SearchKeyword(ctx context.Context, keyword string, page, rows int) models.TourismPage
}

type TourismHandler struct {
	src TourismSource
}

func NewTourismHandler(src TourismSource) *TourismHandler {
	return &TourismHandler{src: src}
}

func paging(c *gin.Context) (page, rows int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	rows, _ = strconv.Atoi(c.DefaultQuery("rows", "0"))
	return page, rows
}

// AreaHandler lists places for ?areaCode=. Upstream failures yield an empty list.
func (h *TourismHandler) AreaHandler(c *gin.Context) {
	page, rows := paging(c)
	c.JSON(http.StatusOK, h.src.AreaBased(c.Request.Context(), c.Query("areaCode"), page, rows))
}

// SearchHandler searches places for ?keyword=.
func (h *TourismHandler) SearchHandler(c *gin.Context) {
	page, rows := paging(c)
	c.JSON(http.StatusOK, h.src.SearchKeyword(c.Request.Context(), c.Query("keyword"), page, rows))
}
