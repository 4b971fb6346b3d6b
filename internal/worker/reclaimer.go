package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
)

// errAbandoned is what spectators of a debate see when its job is given up on.
var errAbandoned = errors.New("debate abandoned: its worker stopped responding too many times")

type RedisReclaimerConfig struct {
	Stream   string
	Group    string
	Consumer string
	MinIdle  time.Duration
	Interval time.Duration
	// MaxDeliveries caps how often a debate is handed out before it is
	// dead-lettered instead of re-run. 0 disables the cap.
	MaxDeliveries int64
	BatchSize     int64
}

// RedisReclaimer takes over debate jobs whose worker died mid-debate, after
// XREADGROUP but before XACK. A job that keeps killing its worker is
// dead-lettered and its spectators are told the debate is over.
type RedisReclaimer struct {
	client      *redis.Client
	cfg         RedisReclaimerConfig
	consumer    Consumer
	broadcaster queue.Broadcaster
	processor   queue.MessageProcessor

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewRedisReclaimer(client *redis.Client, cfg RedisReclaimerConfig, consumer Consumer, broadcaster queue.Broadcaster, processor queue.MessageProcessor) *RedisReclaimer {
	if broadcaster == nil {
		broadcaster = queue.NewNoopBroadcaster()
	}
	return &RedisReclaimer{
		client:      client,
		cfg:         cfg,
		consumer:    consumer,
		broadcaster: broadcaster,
		processor:   processor,
		stopCh:      make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

// Run sweeps once at startup, so debates orphaned by a previous crash restart
// without waiting an interval, then on every tick until Stop.
func (r *RedisReclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "arena.worker.reclaimer",
		Mode:      "async",
	})

	defer close(r.stoppedCh)

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle,
		"max_deliveries", r.cfg.MaxDeliveries,
		"stream", r.cfg.Stream)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if n, err := r.sweep(ctx); err != nil {
			slog.ErrorContext(ctx, "reclaim sweep failed", "error", err)
		} else if n > 0 {
			slog.InfoContext(ctx, "reclaim sweep finished", "reclaimed", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
		}
	}
}

func (r *RedisReclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// sweep handles one batch of stale jobs and returns how many it claimed.
func (r *RedisReclaimer) sweep(ctx context.Context) (int, error) {
	stale, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.cfg.Stream,
		Group:  r.cfg.Group,
		Idle:   r.cfg.MinIdle,
		Start:  "-",
		End:    "+",
		Count:  r.cfg.BatchSize,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("listing stale debate jobs: %w", err)
	}

	claimed := 0
	for _, p := range stale {
		ok, err := r.takeOver(ctx, p)
		if err != nil {
			slog.ErrorContext(ctx, "failed to take over debate job",
				"error", err,
				"job_id", p.ID,
				"previous_consumer", p.Consumer,
				"idle", p.Idle)
			continue
		}
		if ok {
			claimed++
		}
	}
	return claimed, nil
}

// takeOver claims one stale job and either re-runs or abandons it. It reports
// false when another reclaimer won the claim.
func (r *RedisReclaimer) takeOver(ctx context.Context, p redis.XPendingExt) (bool, error) {
	jobID := p.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{JobID: &jobID})

	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.cfg.Stream,
		Group:    r.cfg.Group,
		Consumer: r.cfg.Consumer,
		MinIdle:  r.cfg.MinIdle,
		Messages: []string{p.ID},
	}).Result()
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", p.ID, err)
	}
	if len(claimed) == 0 {
		slog.DebugContext(ctx, "debate job already taken over elsewhere")
		return false, nil
	}

	raw := claimed[0]
	msg, err := queue.ParseMessage(raw)
	if err != nil {
		slog.ErrorContext(ctx, "unreadable debate job, dead-lettering", "error", err)
		return true, r.consumer.SendDLQ(ctx, queue.Message{ID: raw.ID, Raw: raw}, err.Error())
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{DebateID: &msg.DebateID})

	if exhausted(p.RetryCount, r.cfg.MaxDeliveries) {
		slog.WarnContext(ctx, "debate job keeps losing its worker, abandoning",
			"deliveries", p.RetryCount,
			"previous_consumer", p.Consumer)
		r.abandon(ctx, msg.DebateID)
		return true, r.consumer.SendDLQ(ctx, msg, errAbandoned.Error())
	}

	slog.InfoContext(ctx, "restarting orphaned debate",
		"previous_consumer", p.Consumer,
		"idle", p.Idle,
		"deliveries", p.RetryCount)

	start := time.Now()
	if err := r.processor(ctx, msg); err != nil {
		return true, fmt.Errorf("running reclaimed debate %d: %w", msg.DebateID, err)
	}

	slog.InfoContext(ctx, "orphaned debate finished", "duration_ms", time.Since(start).Milliseconds())
	return true, nil
}

// abandon closes the spectator feed of a debate that will never finish.
func (r *RedisReclaimer) abandon(ctx context.Context, debateID int64) {
	ctx = context.WithoutCancel(ctx)
	for _, ev := range []debate.Event{debate.ErrorEvent(errAbandoned), debate.EndEvent()} {
		if err := r.broadcaster.Publish(ctx, debateID, ev); err != nil {
			slog.WarnContext(ctx, "failed to notify spectators of abandoned debate", "error", err)
			return
		}
	}
}

// exhausted reports whether a job delivered deliveries times has used up its
// budget. The count includes the delivery that is now stale.
func exhausted(deliveries, limit int64) bool {
	return limit > 0 && deliveries >= limit
}
