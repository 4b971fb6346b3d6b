package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/internal/debate"
)

// EventReset marks a broadcast stream that was cleared because its debate is
// being run again. Spectators already following it discard what they have seen.
const EventReset = "reset"

// Broadcaster publishes debate events for spectators.
type Broadcaster interface {
	Publish(ctx context.Context, debateID int64, ev debate.Event) error
	// Reset drops whatever an earlier attempt at the debate published.
	Reset(ctx context.Context, debateID int64) error
}

type BroadcastConfig struct {
	TTL    time.Duration // stream expiry, refreshed on every publish
	MaxLen int64         // approximate cap on stream length
}

type redisBroadcaster struct {
	client *redis.Client
	cfg    BroadcastConfig
}

func NewRedisBroadcaster(client *redis.Client, cfg BroadcastConfig) Broadcaster {
	return &redisBroadcaster{client: client, cfg: cfg}
}

func (b *redisBroadcaster) Publish(ctx context.Context, debateID int64, ev debate.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", ev.Type, err)
	}

	stream := EventStreamName(debateID)
	pipe := b.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: b.cfg.MaxLen,
		Approx: b.cfg.MaxLen > 0,
		Values: map[string]any{
			"type":    string(ev.Type),
			"payload": string(payload),
		},
	})
	if b.cfg.TTL > 0 {
		pipe.Expire(ctx, stream, b.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing to %s: %w", stream, err)
	}
	return nil
}

func (b *redisBroadcaster) Reset(ctx context.Context, debateID int64) error {
	stream := EventStreamName(debateID)
	n, err := b.client.Del(ctx, stream).Result()
	if err != nil {
		return fmt.Errorf("resetting %s: %w", stream, err)
	}
	if n == 0 {
		return nil
	}

	// live tails keep their last_id across the DEL, so they need telling
	pipe := b.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"type":    EventReset,
			"payload": "{}",
		},
	})
	if b.cfg.TTL > 0 {
		pipe.Expire(ctx, stream, b.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("marking %s as reset: %w", stream, err)
	}
	return nil
}

type noopBroadcaster struct{}

// NewNoopBroadcaster is used when redis is not configured.
func NewNoopBroadcaster() Broadcaster {
	return noopBroadcaster{}
}

func (noopBroadcaster) Publish(context.Context, int64, debate.Event) error {
	return nil
}

func (noopBroadcaster) Reset(context.Context, int64) error {
	return nil
}
