package logger_test

import (
	"bytes"
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/common/logger"
)

var _ = Describe("LogFields", func() {
	It("merges newer non-empty values over existing ones", func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			DebateID:  logger.Ptr(int64(7)),
			Phase:     logger.Ptr("intro"),
			Component: "arena.debate.machine",
		})
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			Phase: logger.Ptr("opening_pro"),
			Round: logger.Ptr(1),
		})

		fields := logger.GetLogFields(ctx)
		Expect(*fields.DebateID).To(Equal(int64(7)))
		Expect(*fields.Phase).To(Equal("opening_pro"))
		Expect(*fields.Round).To(Equal(1))
		Expect(fields.Component).To(Equal("arena.debate.machine"))
	})

	It("returns empty fields for a bare context", func() {
		Expect(logger.GetLogFields(context.Background())).To(Equal(logger.LogFields{}))
	})
})

var _ = Describe("TraceHandler", func() {
	It("adds context fields to every record", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewTraceHandler(slog.NewTextHandler(&buf, nil)))

		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			DebateID: logger.Ptr(int64(42)),
			Speaker:  logger.Ptr("Pro First Speaker"),
			Mode:     "stream",
		})
		log.InfoContext(ctx, "turn produced")

		out := buf.String()
		Expect(out).To(ContainSubstring("debate_id=42"))
		Expect(out).To(ContainSubstring(`speaker="Pro First Speaker"`))
		Expect(out).To(ContainSubstring("mode=stream"))
	})
})

var _ = DescribeTable("Truncate",
	func(in string, n int, expected string) {
		Expect(logger.Truncate(in, n)).To(Equal(expected))
	},
	Entry("short string unchanged", "hello", 10, "hello"),
	Entry("long string cut", "hello world", 5, "hello..."),
	Entry("multibyte text cut on rune boundary", "正方一辩立论", 2, "正方..."),
)
