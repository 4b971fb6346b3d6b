package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The debate machine enriches the context once per phase so every completion log
// carries the debate, phase, round and speaker without threading them by hand.
type LogFields struct {
	DebateID  *int64  // Debate (session) snowflake ID
	JobID     *string // Redis stream message ID of an async debate job
	Phase     *string // Current phase name (e.g., "refute_pro")
	Round     *int    // Current rebuttal round
	Speaker   *string // Display name of the speaking role
	Mode      string  // "batch", "stream", "single_turn", "judge", "async"
	Component string  // Component name (OTel semantic convention style, e.g., "arena.debate.machine")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.DebateID != nil {
		result.DebateID = next.DebateID
	}
	if next.JobID != nil {
		result.JobID = next.JobID
	}
	if next.Phase != nil {
		result.Phase = next.Phase
	}
	if next.Round != nil {
		result.Round = next.Round
	}
	if next.Speaker != nil {
		result.Speaker = next.Speaker
	}
	if next.Mode != "" {
		result.Mode = next.Mode
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Round: logger.Ptr(2)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to at most maxLen runes, appending "..." if truncated.
// Debate text is frequently non-ASCII, so it counts runes rather than bytes.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
