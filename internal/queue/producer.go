package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, job DebateJob) (string, error)
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Enqueue appends the job to the stream and returns the stream message ID.
func (p *redisProducer) Enqueue(ctx context.Context, job DebateJob) (string, error) {
	attempt := job.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type": string(TaskTypeDebate),
		"debate_id": job.DebateID,
		"spec":      string(job.Spec),
		"attempt":   attempt,
	}

	if job.TraceID != nil && *job.TraceID != "" {
		fields["trace_id"] = *job.TraceID
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue debate: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued debate job", "debate_id", job.DebateID, "message_id", id, "attempt", attempt)
	return id, nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
