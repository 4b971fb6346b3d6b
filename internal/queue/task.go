package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

type TaskType string

const (
	TaskTypeDebate TaskType = "debate"
)

// DebateJob asks a worker to run one debate. Spec is the JSON encoded debate
// request; the queue does not interpret it.
type DebateJob struct {
	DebateID int64
	Spec     json.RawMessage
	TraceID  *string
	Attempt  int
}

// EventStreamName is the per-debate broadcast stream spectators tail.
func EventStreamName(debateID int64) string {
	return fmt.Sprintf("arena:debate-%d:events", debateID)
}

// MessageProcessor handles one parsed job message.
type MessageProcessor func(ctx context.Context, msg Message) error
