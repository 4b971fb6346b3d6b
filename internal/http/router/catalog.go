package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/arena/internal/http/handler"
)

func CatalogRouter(rg *gin.RouterGroup, h *handler.CatalogHandler) {
	rg.GET("/models", h.Models)
	rg.GET("/personas", h.Personas)
	rg.GET("/schema", h.Schema)
}
