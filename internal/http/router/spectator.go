package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/arena/internal/http/handler"
)

func SpectatorRouter(rg *gin.RouterGroup, h *handler.SpectatorHandler) {
	rg.GET("/:id/events", h.Events)
}
