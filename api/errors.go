package api

import (
	"net/http"

	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/log"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(kind string) int {
	switch kind {
	case "invalid_request":
		return http.StatusBadRequest
	case "conflict":
		return http.StatusConflict
	case "not_found":
		return http.StatusNotFound
	case "upstream_unavailable":
		return http.StatusServiceUnavailable
	case "domain_rule":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {error, code}. Internal errors are logged and
// their text is not exposed.
func writeError(c *gin.Context, err error) {
	kind := domain.Kind(err)
	status := statusFor(kind)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(c.Request.Context()).WithError(err).Error("request failed")
		message = "internal server error"
	}
	c.JSON(status, errorResponse{Error: message, Code: kind})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: message, Code: "invalid_request"})
}
