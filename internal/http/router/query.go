package router

import (
	"github.com/gin-gonic/gin"

	"aitools.app/recommender/internal/http/handler"
)

func QueryRouter(rg *gin.RouterGroup, h *handler.QueryHandler) {
	rg.POST("", h.Consult)
}
