package api

import "github.com/gin-gonic/gin"

// NewRouter mounts the ticket and flight routes under /api.
func NewRouter(tickets *TicketHandler, flights *FlightHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationID(), RequestLogger())

	group := router.Group("/api")
	tickets.Register(group.Group("/tickets"))
	flights.Register(group.Group("/flights"))
	return router
}
