package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// IsRetryable reports whether a completion error is worth another attempt.
// Rate limits, provider 5xx and transport failures retry. Cancellation and 4xx do not.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled or deadline exceeded")
		return false
	}

	status := 0
	var openaiErr *openai.Error
	var anthropicErr *anthropic.Error
	switch {
	case errors.As(err, &openaiErr):
		status = openaiErr.StatusCode
	case errors.As(err, &anthropicErr):
		status = anthropicErr.StatusCode
	default:
		// Network errors (no API response) are generally retryable
		slog.WarnContext(ctx, "llm network error, will retry", "error", err)
		return true
	}

	switch {
	case status == 429:
		slog.WarnContext(ctx, "llm rate limited, will retry", "status_code", status)
		return true
	case status >= 500:
		slog.WarnContext(ctx, "llm server error, will retry", "status_code", status)
		return true
	default:
		slog.ErrorContext(ctx, "llm client error, not retryable", "status_code", status, "error", err)
		return false
	}
}

type retryCompleter struct {
	next     Completer
	attempts int
	backoff  time.Duration
}

// WithRetry wraps c so retryable failures are attempted up to attempts times in total,
// doubling backoff between tries. attempts <= 1 returns c unchanged.
func WithRetry(c Completer, attempts int, backoff time.Duration) Completer {
	if attempts <= 1 {
		return c
	}
	return &retryCompleter{next: c, attempts: attempts, backoff: backoff}
}

func (r *retryCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	wait := r.backoff
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == r.attempts || !IsRetryable(ctx, err) {
			break
		}

		slog.InfoContext(ctx, "retrying llm completion",
			"model", r.next.Model(),
			"attempt", attempt,
			"backoff_ms", wait.Milliseconds())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, lastErr
}

func (r *retryCompleter) Model() string {
	return r.next.Model()
}

type timeoutCompleter struct {
	next    Completer
	timeout time.Duration
}

// WithTimeout bounds every call to c. timeout <= 0 returns c unchanged.
func WithTimeout(c Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return c
	}
	return &timeoutCompleter{next: c, timeout: timeout}
}

func (t *timeoutCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, req)
}

func (t *timeoutCompleter) Model() string {
	return t.next.Model()
}
