package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"aitools.app/recommender/internal/dataset"
	"aitools.app/recommender/internal/http/dto"
	"aitools.app/recommender/internal/service"
)

// statusFor maps the error taxonomy to a response code: missing settings are
// a server fault, failures of the data source or model are a bad gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, dataset.ErrFetch),
		errors.Is(err, dataset.ErrParse),
		errors.Is(err, service.ErrDataUnavailable),
		errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	slog.ErrorContext(c.Request.Context(), msg, "error", err, "status", status)
	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponse{Detail: err.Error()})
}
