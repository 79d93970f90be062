package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aitools.app/recommender/internal/http/handler"
	"aitools.app/recommender/internal/service"
)

type RouterConfig struct {
	Gatherer prometheus.Gatherer // nil disables /metrics
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	datasetHandler := handler.NewDatasetHandler(services.Datasets())
	DatasetRouter(router.Group("/datos"), datasetHandler)

	queryHandler := handler.NewQueryHandler(services.Queries())
	QueryRouter(router.Group("/consulta"), queryHandler)
}
