package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/http/dto"
	"basegraph.app/arena/internal/service"
)

// DebateIDHeader carries the id of a streamed debate so clients can share
// its spectator feed.
const DebateIDHeader = "X-Debate-Id"

type DebateHandler struct {
	debateService   service.DebateService
	traceHeaderName string
}

func NewDebateHandler(debateService service.DebateService, traceHeaderName string) *DebateHandler {
	return &DebateHandler{
		debateService:   debateService,
		traceHeaderName: traceHeaderName,
	}
}

func (h *DebateHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.debateService.Run(ctx, req.ToSpec())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDebateResponse(result))
}

// Stream writes one JSON event per line as each turn is produced. Failures
// after the first byte surface as an error event followed by end.
func (h *DebateHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.debateService.Stream(ctx, req.ToSpec())
	if err != nil {
		respondError(c, err)
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{DebateID: &st.ID, Mode: "stream"})

	headers := c.Writer.Header()
	headers.Set("Content-Type", "text/plain; charset=utf-8")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("X-Accel-Buffering", "no")
	headers.Set(DebateIDHeader, strconv.FormatInt(st.ID, 10))
	h.setTraceHeader(c)
	c.Status(http.StatusOK)

	enc := debate.NewEncoder(c.Writer)
	for ev := range st.Events {
		if err := enc.Encode(ev); err != nil {
			slog.WarnContext(ctx, "stream client went away", "error", err)
			return
		}
	}
}

// Enqueue hands the debate to the worker pool and returns where to watch it.
func (h *DebateHandler) Enqueue(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debateID, err := h.debateService.Enqueue(ctx, req.ToSpec())
	if err != nil {
		respondError(c, err)
		return
	}

	slog.InfoContext(ctx, "debate enqueued", "debate_id", debateID)
	h.setTraceHeader(c)
	c.JSON(http.StatusAccepted, dto.EnqueueDebateResponse{
		DebateID: debateID,
		Events:   fmt.Sprintf("/api/v1/debates/%d/events", debateID),
	})
}

func (h *DebateHandler) HumanVsAI(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.HumanVsAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.debateService.HumanTurn(ctx, req.ToServiceRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHumanVsAIResponse(result))
}

func (h *DebateHandler) HumanVsAIJudge(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.HumanVsAIJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.debateService.HumanJudge(ctx, req.ToServiceRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHumanVsAIJudgeResponse(result))
}

func (h *DebateHandler) setTraceHeader(c *gin.Context) {
	if h.traceHeaderName == "" {
		return
	}
	if traceID := logger.TraceID(c.Request.Context()); traceID != "" {
		c.Header(h.traceHeaderName, traceID)
	}
}
