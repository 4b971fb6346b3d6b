package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/arena/internal/http/handler"
)

func DebateRouter(rg *gin.RouterGroup, h *handler.DebateHandler) {
	rg.POST("/debate", h.Run)
	rg.POST("/debate/stream", h.Stream)
	rg.POST("/debate/human-vs-ai", h.HumanVsAI)
	rg.POST("/debate/human-vs-ai/judge", h.HumanVsAIJudge)
	rg.POST("/debates", h.Enqueue)
}
