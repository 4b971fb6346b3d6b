package worker_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
	"basegraph.app/arena/internal/service"
	"basegraph.app/arena/internal/worker"
)

type mockConsumer struct {
	mu           sync.Mutex
	readFn       func(ctx context.Context) ([]queue.Message, error)
	acked        []string
	requeued     []string
	deadLettered []string
	reasons      []string
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if m.readFn != nil {
		return m.readFn(ctx)
	}
	return nil, nil
}

func (m *mockConsumer) Ack(ctx context.Context, msg queue.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg.ID)
	return nil
}

func (m *mockConsumer) Requeue(ctx context.Context, msg queue.Message, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requeued = append(m.requeued, msg.ID)
	m.reasons = append(m.reasons, errMsg)
	return nil
}

func (m *mockConsumer) SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadLettered = append(m.deadLettered, msg.ID)
	m.reasons = append(m.reasons, errMsg)
	return nil
}

type mockRunner struct {
	executeFn func(ctx context.Context, debateID int64, spec service.DebateSpec) error
	specs     []service.DebateSpec
	ids       []int64
}

func (m *mockRunner) Execute(ctx context.Context, debateID int64, spec service.DebateSpec) error {
	m.ids = append(m.ids, debateID)
	m.specs = append(m.specs, spec)
	if m.executeFn != nil {
		return m.executeFn(ctx, debateID, spec)
	}
	return nil
}

// mockBroadcaster keeps one stream per debate; Reset empties it like a DEL.
type mockBroadcaster struct {
	mu     sync.Mutex
	events map[int64][]debate.Event
}

func (m *mockBroadcaster) Publish(ctx context.Context, debateID int64, ev debate.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = make(map[int64][]debate.Event)
	}
	m.events[debateID] = append(m.events[debateID], ev)
	return nil
}

func (m *mockBroadcaster) Reset(ctx context.Context, debateID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, debateID)
	return nil
}

func (m *mockBroadcaster) count(debateID int64, t debate.EventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events[debateID] {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (m *mockBroadcaster) published(debateID int64) []debate.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[debateID]
}

func job(attempt int) queue.Message {
	return queue.Message{
		ID:       "1700000000000-0",
		TaskType: queue.TaskTypeDebate,
		DebateID: 42,
		Spec:     []byte(`{"topic":"Homework should be abolished","rounds":3,"judge":{"profile_id":"gpt4.1"}}`),
		Attempt:  attempt,
	}
}

var _ = Describe("Worker", func() {
	var (
		ctx         context.Context
		consumer    *mockConsumer
		runner      *mockRunner
		broadcaster *mockBroadcaster
		w           *worker.Worker
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		runner = &mockRunner{}
		broadcaster = &mockBroadcaster{}
		w = worker.New(consumer, runner, broadcaster, worker.Config{MaxAttempts: 3})
	})

	Describe("HandleMessage", func() {
		It("runs the debate and acknowledges the job", func() {
			Expect(w.HandleMessage(ctx, job(1))).To(Succeed())

			Expect(runner.ids).To(Equal([]int64{42}))
			Expect(runner.specs[0].Topic).To(Equal("Homework should be abolished"))
			Expect(runner.specs[0].Rounds).To(Equal(3))
			Expect(runner.specs[0].Judge.ProfileID).To(Equal("gpt4.1"))
			Expect(consumer.acked).To(Equal([]string{"1700000000000-0"}))
			Expect(consumer.deadLettered).To(BeEmpty())
		})

		It("dead-letters an undecodable spec without running it", func() {
			msg := job(1)
			msg.Spec = []byte("{not json")

			Expect(w.HandleMessage(ctx, msg)).NotTo(Succeed())
			Expect(runner.ids).To(BeEmpty())
			Expect(consumer.deadLettered).To(HaveLen(1))
			Expect(consumer.reasons[0]).To(ContainSubstring("decoding debate spec"))
		})

		It("dead-letters configuration errors on the first attempt", func() {
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				return fmt.Errorf("%w: moderator has no model profile", debate.ErrInvalidRoster)
			}

			Expect(w.HandleMessage(ctx, job(1))).NotTo(Succeed())
			Expect(consumer.deadLettered).To(HaveLen(1))
			Expect(consumer.requeued).To(BeEmpty())
		})

		It("requeues an interrupted debate while attempts remain", func() {
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				return &debate.CompletionError{Phase: debate.PhaseRefutePro, Speaker: "Pro Second Debater", Err: context.DeadlineExceeded}
			}

			Expect(w.HandleMessage(ctx, job(1))).NotTo(Succeed())
			Expect(consumer.requeued).To(HaveLen(1))
			Expect(consumer.deadLettered).To(BeEmpty())
		})

		It("dead-letters once attempts are exhausted", func() {
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				return context.Canceled
			}

			Expect(w.HandleMessage(ctx, job(3))).NotTo(Succeed())
			Expect(consumer.requeued).To(BeEmpty())
			Expect(consumer.deadLettered).To(HaveLen(1))
		})

		It("dead-letters a profile that cannot be served", func() {
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				return fmt.Errorf("seating Moderator: %w", catalog.ErrProfileUnavailable)
			}

			Expect(w.HandleMessage(ctx, job(1))).NotTo(Succeed())
			Expect(consumer.deadLettered).To(HaveLen(1))
		})

		It("closes the broadcast only once the debate is dead-lettered", func() {
			// each attempt behaves like the service: reset, publish turns, fail
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				Expect(broadcaster.Reset(ctx, debateID)).To(Succeed())
				Expect(broadcaster.Publish(ctx, debateID, debate.MessageEvent(debate.Turn{Seq: 1, Speaker: debate.ModeratorName}))).To(Succeed())
				return &debate.CompletionError{Phase: debate.PhaseOpeningPro, Speaker: "Pro First Debater", Err: context.DeadlineExceeded}
			}

			for attempt := 1; attempt <= 2; attempt++ {
				Expect(w.HandleMessage(ctx, job(attempt))).NotTo(Succeed())
				Expect(broadcaster.count(42, debate.EventEnd)).To(BeZero())
				Expect(broadcaster.count(42, debate.EventError)).To(BeZero())
			}
			Expect(consumer.requeued).To(HaveLen(2))

			Expect(w.HandleMessage(ctx, job(3))).NotTo(Succeed())
			Expect(consumer.deadLettered).To(HaveLen(1))

			published := broadcaster.published(42)
			Expect(published).To(HaveLen(3))
			Expect(published[0].Type).To(Equal(debate.EventMessage))
			Expect(published[1].Type).To(Equal(debate.EventError))
			Expect(published[1].Detail).To(ContainSubstring("deadline exceeded"))
			Expect(published[2].Type).To(Equal(debate.EventEnd))
		})

		It("closes the broadcast of a debate that cannot be seated", func() {
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				return fmt.Errorf("%w: moderator has no model profile", debate.ErrInvalidRoster)
			}

			Expect(w.HandleMessage(ctx, job(1))).NotTo(Succeed())
			Expect(broadcaster.count(42, debate.EventError)).To(Equal(1))
			Expect(broadcaster.count(42, debate.EventEnd)).To(Equal(1))
		})

		It("leaves the broadcast of a successful debate to the runner", func() {
			Expect(w.HandleMessage(ctx, job(1))).To(Succeed())
			Expect(broadcaster.published(42)).To(BeEmpty())
		})

		It("recovers from a panicking debate", func() {
			runner.executeFn = func(ctx context.Context, debateID int64, spec service.DebateSpec) error {
				panic("boom")
			}

			err := w.HandleMessage(ctx, job(1))
			Expect(err).To(MatchError(ContainSubstring("panic: boom")))
			Expect(consumer.deadLettered).To(HaveLen(1))
		})
	})

	Describe("Run", func() {
		It("processes jobs until stopped", func() {
			var once sync.Once
			consumer.readFn = func(ctx context.Context) ([]queue.Message, error) {
				var msgs []queue.Message
				once.Do(func() { msgs = []queue.Message{job(1)} })
				time.Sleep(5 * time.Millisecond)
				return msgs, nil
			}

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			Eventually(func() int {
				consumer.mu.Lock()
				defer consumer.mu.Unlock()
				return len(consumer.acked)
			}).Should(Equal(1))

			w.Stop()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("returns when the context ends", func() {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- w.Run(runCtx) }()

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
