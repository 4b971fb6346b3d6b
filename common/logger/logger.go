package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"basegraph.app/arena/core/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

func Setup(cfg config.Config) {
	SetupWriter(cfg, os.Stdout)
}

// SetupWriter is Setup with an explicit destination. The CLI logs to stderr so the
// transcript on stdout stays clean.
func SetupWriter(cfg config.Config, w io.Writer) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() && cfg.OTel.Enabled() {
		handler = otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	} else if cfg.IsProduction() {
		handler = NewTraceHandler(slog.NewJSONHandler(w, opts))
	} else {
		handler = NewTraceHandler(slog.NewTextHandler(w, opts))
	}

	slog.SetDefault(slog.New(handler))
}

type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.DebateID != nil {
		r.AddAttrs(slog.Int64("debate_id", *fields.DebateID))
	}
	if fields.JobID != nil {
		r.AddAttrs(slog.String("job_id", *fields.JobID))
	}
	if fields.Phase != nil {
		r.AddAttrs(slog.String("phase", *fields.Phase))
	}
	if fields.Round != nil {
		r.AddAttrs(slog.Int("round", *fields.Round))
	}
	if fields.Speaker != nil {
		r.AddAttrs(slog.String("speaker", *fields.Speaker))
	}
	if fields.Mode != "" {
		r.AddAttrs(slog.String("mode", fields.Mode))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
