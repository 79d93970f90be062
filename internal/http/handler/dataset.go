package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"aitools.app/recommender/internal/http/dto"
	"aitools.app/recommender/internal/service"
)

const fetchedAtHeader = "X-Data-Fetched-At"

type DatasetHandler struct {
	datasets service.DatasetService
}

func NewDatasetHandler(datasets service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasets: datasets}
}

// List returns the normalized dataset. ?refresh=true bypasses the cache.
func (h *DatasetHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	force, _ := strconv.ParseBool(c.Query("refresh"))

	rows, err := h.datasets.Rows(ctx, force)
	if err != nil {
		respondError(c, "failed to load dataset", err)
		return
	}

	if _, fetchedAt, ok := h.datasets.Snapshot(); ok {
		c.Header(fetchedAtHeader, fetchedAt.UTC().Format(time.RFC3339))
	}
	c.PureJSON(http.StatusOK, dto.ToDatasetResponse(rows))
}
