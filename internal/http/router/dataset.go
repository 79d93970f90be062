package router

import (
	"github.com/gin-gonic/gin"

	"aitools.app/recommender/internal/http/handler"
)

func DatasetRouter(rg *gin.RouterGroup, h *handler.DatasetHandler) {
	rg.GET("", h.List)
}
