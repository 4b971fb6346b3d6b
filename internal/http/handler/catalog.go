package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/http/dto"
	"basegraph.app/arena/internal/service"
)

type CatalogHandler struct {
	debateService service.DebateService
	schemas       map[string]*jsonschema.Schema
}

func NewCatalogHandler(debateService service.DebateService) *CatalogHandler {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return &CatalogHandler{
		debateService: debateService,
		schemas: map[string]*jsonschema.Schema{
			"debate_request":            reflector.Reflect(&dto.DebateRequest{}),
			"human_vs_ai_request":       reflector.Reflect(&dto.HumanVsAIRequest{}),
			"human_vs_ai_judge_request": reflector.Reflect(&dto.HumanVsAIJudgeRequest{}),
			"stream_event":              reflector.Reflect(&debate.Event{}),
		},
	}
}

func (h *CatalogHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.debateService.Models())
}

func (h *CatalogHandler) Personas(c *gin.Context) {
	c.JSON(http.StatusOK, h.debateService.Personas())
}

func (h *CatalogHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schemas)
}
