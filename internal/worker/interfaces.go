package worker

import (
	"context"

	"basegraph.app/arena/internal/queue"
	"basegraph.app/arena/internal/service"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// DebateRunner executes one enqueued debate.
type DebateRunner interface {
	Execute(ctx context.Context, debateID int64, spec service.DebateSpec) error
}
