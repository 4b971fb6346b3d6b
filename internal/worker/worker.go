package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/arena/common/llm"
	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
	"basegraph.app/arena/internal/service"
)

type Config struct {
	MaxAttempts int
}

type Worker struct {
	consumer    Consumer
	runner      DebateRunner
	broadcaster queue.Broadcaster
	cfg         Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New builds a worker. broadcaster receives the closing error and end events
// of debates that are given up on; nil means nobody is watching.
func New(consumer Consumer, runner DebateRunner, broadcaster queue.Broadcaster, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if broadcaster == nil {
		broadcaster = queue.NewNoopBroadcaster()
	}
	return &Worker{
		consumer:    consumer,
		runner:      runner,
		broadcaster: broadcaster,
		cfg:         cfg,
		stopCh:      make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "arena.worker",
	})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

// Stop waits for the debate in flight to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		_ = w.HandleMessage(ctx, msg)
	}

	return nil
}

// HandleMessage runs one job and settles it: acked on success, requeued or
// dead-lettered on failure. Exported so it can be reused by the reclaimer.
func (w *Worker) HandleMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DebateID: &msg.DebateID,
		JobID:    &msg.ID,
	})

	if err := w.processMessageSafe(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "message processing failed",
			"error", err,
			"attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
		return err
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Log but don't fail - message will be reclaimed and the debate rerun
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}
	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = permanent(fmt.Errorf("panic: %v", r))
		}
	}()
	return w.process(ctx, msg)
}

func (w *Worker) process(ctx context.Context, msg queue.Message) error {
	var spec service.DebateSpec
	if err := json.Unmarshal(msg.Spec, &spec); err != nil {
		return permanent(fmt.Errorf("decoding debate spec: %w", err))
	}

	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.debate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("debate.id", msg.DebateID),
		attribute.Int("job.attempt", msg.Attempt),
	)

	slog.InfoContext(span.Context(), "processing debate job",
		"attempt", msg.Attempt,
		"rounds", spec.Rounds)

	start := time.Now()
	if err := w.runner.Execute(span.Context(), msg.DebateID, spec); err != nil {
		span.RecordError(err)
		return err
	}

	slog.InfoContext(span.Context(), "debate job completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	// settle the message even when the worker is shutting down
	ctx = context.WithoutCancel(ctx)

	if !retryable(err) || msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "sending debate job to DLQ",
			"attempts", msg.Attempt,
			"retryable", retryable(err))
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		w.closeBroadcast(ctx, msg.DebateID, err)
		return
	}

	// the retry resets the broadcast, so spectators hear nothing final yet
	slog.WarnContext(ctx, "requeuing failed debate job", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}

// closeBroadcast ends the spectator feed of a debate that will not run again.
func (w *Worker) closeBroadcast(ctx context.Context, debateID int64, cause error) {
	for _, ev := range []debate.Event{debate.ErrorEvent(cause), debate.EndEvent()} {
		if err := w.broadcaster.Publish(ctx, debateID, ev); err != nil {
			slog.WarnContext(ctx, "failed to close debate broadcast", "error", err, "type", ev.Type)
			return
		}
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// retryable reports whether rerunning the debate could succeed. Roster and
// session errors never can; interrupted or transiently failed completions may.
func retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var completionErr *debate.CompletionError
	if errors.As(err, &completionErr) {
		return llm.IsRetryable(context.Background(), completionErr.Err)
	}
	return false
}
