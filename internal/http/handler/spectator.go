package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/common/id"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
)

// SpectatorHandler tails a debate's broadcast stream as server-sent events.
type SpectatorHandler struct {
	redis *redis.Client
	block time.Duration
}

func NewSpectatorHandler(redisClient *redis.Client) *SpectatorHandler {
	return &SpectatorHandler{redis: redisClient, block: 25 * time.Second}
}

// Events replays the debate from last_id (default: the beginning) and follows
// it until the end event. A reset event tells the client the debate restarted
// and everything it has shown so far is void.
func (h *SpectatorHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "redis not configured"})
		return
	}

	debateID, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid debate id"})
		return
	}

	stream := queue.EventStreamName(debateID)
	lastID := c.Query("last_id")
	if lastID == "" {
		lastID = "0"
	}

	setSSEHeaders(c.Writer)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	sseWrite(c.Writer, "", "ping", "ready")
	flusher.Flush()

	delivered := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := h.redis.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Block:   h.block,
			Count:   100,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				sseWrite(c.Writer, "", "ping", time.Now().UTC().Format(time.RFC3339Nano))
				flusher.Flush()
				continue
			}
			if ctx.Err() != nil {
				return
			}
			sseWrite(c.Writer, "", "error", map[string]string{"error": err.Error()})
			flusher.Flush()
			return
		}

		for _, streamRes := range res {
			for _, msg := range streamRes.Messages {
				lastID = msg.ID
				eventType := fmt.Sprint(msg.Values["type"])
				if !forwards(eventType, delivered) {
					continue
				}
				delivered++
				sseWrite(c.Writer, msg.ID, eventType, fmt.Sprint(msg.Values["payload"]))
				flusher.Flush()
				if debate.EventType(eventType) == debate.EventEnd {
					return
				}
			}
		}
	}
}

// forwards reports whether a stream entry goes out to a client that has been
// sent delivered events. A reset heading the stream has nothing to void.
func forwards(eventType string, delivered int) bool {
	return eventType != queue.EventReset || delivered > 0
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

// sseWrite emits one event. id, when set, lets clients resume with last_id.
func sseWrite(w http.ResponseWriter, id, event string, data any) {
	payload := marshalPayload(data)
	if id != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", id)
	}
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

func marshalPayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		bytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(bytes)
	}
}
