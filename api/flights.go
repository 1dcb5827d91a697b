package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airticket/internal/service/lookup"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service lookup.LookupUseCase
}

func NewFlightHandler(service lookup.LookupUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/seats", h.seatMap)
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid flight id")
		return
	}
	seatMap, err := h.service.SeatMap(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}
