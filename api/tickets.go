package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airticket/internal/service/booking"
	"github.com/Domenick1991/airticket/internal/service/cancellation"
	"github.com/Domenick1991/airticket/internal/service/lookup"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	booking      booking.BookingUseCase
	cancellation cancellation.CancellationUseCase
	lookup       lookup.LookupUseCase
}

type bookTicketRequest struct {
	FlightID     int64    `json:"flight_id" binding:"required"`
	PassengerIDs []int64  `json:"passenger_ids"`
	SeatNumbers  []string `json:"seat_numbers"`
}

type bookTicketResponse struct {
	PNR string `json:"pnr"`
}

type cancelTicketResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func NewTicketHandler(
	bookingService booking.BookingUseCase,
	cancellationService cancellation.CancellationUseCase,
	lookupService lookup.LookupUseCase,
) *TicketHandler {
	return &TicketHandler{
		booking:      bookingService,
		cancellation: cancellationService,
		lookup:       lookupService,
	}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.book)
	router.DELETE("/:id", h.cancel)
	router.GET("/pnr/:pnr", h.getByPNR)
	router.GET("/email/:email", h.getByEmail)
}

func (h *TicketHandler) book(c *gin.Context) {
	var req bookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	pnr, err := h.booking.Book(c.Request.Context(), booking.BookInput{
		FlightID:     req.FlightID,
		PassengerIDs: req.PassengerIDs,
		SeatNumbers:  req.SeatNumbers,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookTicketResponse{PNR: pnr})
}

func (h *TicketHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid ticket id")
		return
	}

	outcome, err := h.cancellation.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelTicketResponse{ID: id, Status: string(outcome)})
}

func (h *TicketHandler) getByPNR(c *gin.Context) {
	view, err := h.lookup.GetByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TicketHandler) getByEmail(c *gin.Context) {
	views, err := h.lookup.GetTicketsByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
