package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/internal/http/handler"
	"basegraph.app/arena/internal/service"
)

type RouterConfig struct {
	TraceHeaderName string
	// Redis backs the spectator feed; nil answers it with 503.
	Redis *redis.Client
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		catalogHandler := handler.NewCatalogHandler(services.Debates())
		CatalogRouter(v1, catalogHandler)

		debateHandler := handler.NewDebateHandler(services.Debates(), cfg.TraceHeaderName)
		DebateRouter(v1, debateHandler)

		spectatorHandler := handler.NewSpectatorHandler(cfg.Redis)
		SpectatorRouter(v1.Group("/debates"), spectatorHandler)
	}
}
