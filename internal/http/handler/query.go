package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"aitools.app/recommender/internal/http/dto"
	"aitools.app/recommender/internal/service"
)

type QueryHandler struct {
	queries service.QueryService
}

func NewQueryHandler(queries service.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

func (h *QueryHandler) Consult(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "invalid request: mensaje is required"})
		return
	}

	html, err := h.queries.Answer(ctx, *req.Mensaje)
	if err != nil {
		respondError(c, "failed to answer query", err)
		return
	}

	c.PureJSON(http.StatusOK, dto.QueryResponse{HTML: html})
}
