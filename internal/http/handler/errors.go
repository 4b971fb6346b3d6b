package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/service"
)

// respondError maps debate and catalogue failures to status codes. Request
// problems are 400, unusable profiles 503, failed completions 502.
func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var completionErr *debate.CompletionError
	switch {
	case errors.Is(err, catalog.ErrProfileNotFound),
		errors.Is(err, debate.ErrInvalidRoster),
		errors.Is(err, debate.ErrInvalidSession),
		errors.Is(err, service.ErrInvalidRequest):
		slog.WarnContext(ctx, "rejected debate request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrProfileUnavailable),
		errors.Is(err, service.ErrQueueDisabled):
		slog.WarnContext(ctx, "debate request cannot be served", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &completionErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, "debate request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
