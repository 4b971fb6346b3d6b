package queue_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
)

var _ = Describe("ParseMessage", func() {
	It("parses a debate job", func() {
		msg, err := queue.ParseMessage(redis.XMessage{
			ID: "1700000000000-0",
			Values: map[string]any{
				"task_type": "debate",
				"debate_id": "42",
				"spec":      `{"topic":"t"}`,
				"attempt":   "2",
				"trace_id":  "abc",
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1700000000000-0"))
		Expect(msg.TaskType).To(Equal(queue.TaskTypeDebate))
		Expect(msg.DebateID).To(BeEquivalentTo(42))
		Expect(string(msg.Spec)).To(Equal(`{"topic":"t"}`))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("abc"))
	})

	It("defaults the attempt to one", func() {
		msg, err := queue.ParseMessage(redis.XMessage{Values: map[string]any{
			"task_type": "debate", "debate_id": "1", "spec": "{}",
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
	})

	DescribeTable("rejects malformed jobs",
		func(values map[string]any, msg string) {
			_, err := queue.ParseMessage(redis.XMessage{Values: values})
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("unknown task", map[string]any{"task_type": "issue_event"}, "unknown task_type"),
		Entry("missing debate id", map[string]any{"task_type": "debate", "spec": "{}"}, "missing debate_id"),
		Entry("bad debate id", map[string]any{"task_type": "debate", "debate_id": "x", "spec": "{}"}, "parsing debate_id"),
		Entry("missing spec", map[string]any{"task_type": "debate", "debate_id": "1"}, "missing spec"),
		Entry("bad attempt", map[string]any{"task_type": "debate", "debate_id": "1", "spec": "{}", "attempt": "many"}, "parsing attempt"),
	)
})

var _ = Describe("EventStreamName", func() {
	It("is scoped per debate", func() {
		Expect(queue.EventStreamName(7)).To(Equal("arena:debate-7:events"))
		Expect(queue.EventStreamName(7)).NotTo(Equal(queue.EventStreamName(8)))
	})
})

var _ = Describe("NoopBroadcaster", func() {
	It("accepts every event", func() {
		b := queue.NewNoopBroadcaster()
		Expect(b.Publish(context.Background(), 1, debate.EndEvent())).To(Succeed())
	})

	It("has nothing to reset", func() {
		Expect(queue.NewNoopBroadcaster().Reset(context.Background(), 1)).To(Succeed())
	})
})
