package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/http/handler"
	"basegraph.app/arena/internal/service"
)

func agent(profile string) map[string]any {
	return map[string]any{"profile_id": profile}
}

func team(profile string) map[string]any {
	return map[string]any{
		"first":  agent(profile),
		"second": agent(profile),
		"third":  agent(profile),
		"fourth": agent(profile),
	}
}

func debateBody(overrides map[string]any) *bytes.Buffer {
	body := map[string]any{
		"topic":  "AI tutors should replace homework",
		"rounds": 2,
		"agents": map[string]any{
			"judge": agent("gpt4.1"),
			"pro":   team("deepseek-chat"),
			"con":   team("qwen3-max"),
		},
	}
	for k, v := range overrides {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	raw, _ := json.Marshal(body)
	return bytes.NewBuffer(raw)
}

func post(router *gin.Engine, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorBody(w *httptest.ResponseRecorder) string {
	var resp map[string]string
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp["error"]
}

var _ = Describe("DebateHandler", func() {
	var (
		router *gin.Engine
		svc    *mockDebateService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockDebateService{}
		h := handler.NewDebateHandler(svc, "X-Trace-Id")
		router.POST("/debate", h.Run)
		router.POST("/debate/stream", h.Stream)
		router.POST("/debates", h.Enqueue)
		router.POST("/human-vs-ai", h.HumanVsAI)
		router.POST("/human-vs-ai/judge", h.HumanVsAIJudge)
	})

	Describe("Run", func() {
		It("returns the transcript", func() {
			var got service.DebateSpec
			svc.runFn = func(_ context.Context, spec service.DebateSpec) (*service.DebateResult, error) {
				got = spec
				return &service.DebateResult{
					ID:     1234,
					Topic:  spec.Topic,
					Rounds: spec.Rounds,
					Turns: []debate.Turn{
						{Seq: 1, Speaker: "Moderator", Content: "Welcome."},
						{Seq: 2, Speaker: "Pro First Debater", Content: "We argue yes."},
					},
				}, nil
			}

			w := post(router, "/debate", debateBody(nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Judge.ProfileID).To(Equal("gpt4.1"))
			Expect(got.Con.Third.ProfileID).To(Equal("qwen3-max"))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["debate_id"]).To(Equal("1234"))
			Expect(resp["rounds"]).To(BeNumerically("==", 2))
			Expect(resp["messages"]).To(Equal([]any{
				map[string]any{"role": "Moderator", "content": "Welcome."},
				map[string]any{"role": "Pro First Debater", "content": "We argue yes."},
			}))
		})

		It("leaves rounds to the service default when omitted", func() {
			var got service.DebateSpec
			svc.runFn = func(_ context.Context, spec service.DebateSpec) (*service.DebateResult, error) {
				got = spec
				return &service.DebateResult{}, nil
			}

			w := post(router, "/debate", debateBody(map[string]any{"rounds": nil}))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Rounds).To(BeZero())
		})

		DescribeTable("rejects invalid bodies",
			func(body *bytes.Buffer) {
				called := false
				svc.runFn = func(context.Context, service.DebateSpec) (*service.DebateResult, error) {
					called = true
					return nil, nil
				}
				w := post(router, "/debate", body)
				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(called).To(BeFalse())
			},
			Entry("malformed json", bytes.NewBufferString(`{`)),
			Entry("missing topic", debateBody(map[string]any{"topic": nil})),
			Entry("too many rounds", debateBody(map[string]any{"rounds": 11})),
			Entry("missing profile", debateBody(map[string]any{"agents": map[string]any{
				"judge": agent("gpt4.1"), "pro": team("deepseek-chat"), "con": team(""),
			}})),
		)

		DescribeTable("maps service errors",
			func(err error, status int) {
				svc.runFn = func(context.Context, service.DebateSpec) (*service.DebateResult, error) {
					return nil, err
				}
				w := post(router, "/debate", debateBody(nil))
				Expect(w.Code).To(Equal(status))
				Expect(errorBody(w)).NotTo(BeEmpty())
			},
			Entry("unknown profile", fmt.Errorf("%w: gpt-9", catalog.ErrProfileNotFound), http.StatusBadRequest),
			Entry("bad roster", fmt.Errorf("%w: duplicate name", debate.ErrInvalidRoster), http.StatusBadRequest),
			Entry("missing credentials", fmt.Errorf("%w: OPENAI_API_KEY is not set", catalog.ErrProfileUnavailable), http.StatusServiceUnavailable),
			Entry("completion failure", fmt.Errorf("running debate: %w", &debate.CompletionError{
				Phase: debate.PhaseClosingCon, Speaker: "Con Fourth Debater", Err: errors.New("upstream 500"),
			}), http.StatusBadGateway),
			Entry("anything else", errors.New("boom"), http.StatusInternalServerError),
		)
	})

	Describe("Stream", func() {
		It("writes newline-delimited events", func() {
			svc.streamFn = func(_ context.Context, spec service.DebateSpec) (*service.DebateStream, error) {
				return &service.DebateStream{
					ID: 77,
					Events: func(yield func(debate.Event) bool) {
						_ = yield(debate.MessageEvent(debate.Turn{Speaker: "Moderator", Content: "Welcome.", Phase: debate.PhaseIntro}))
						_ = yield(debate.ErrorEvent(errors.New("opening_pro (Pro First Debater): timeout")))
						_ = yield(debate.EndEvent())
					},
				}, nil
			}

			w := post(router, "/debate/stream", debateBody(nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/plain; charset=utf-8"))
			Expect(w.Header().Get(handler.DebateIDHeader)).To(Equal("77"))

			var lines []map[string]any
			scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
			for scanner.Scan() {
				var line map[string]any
				Expect(json.Unmarshal(scanner.Bytes(), &line)).To(Succeed())
				lines = append(lines, line)
			}

			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(HaveKeyWithValue("type", "message"))
			Expect(lines[0]).To(HaveKeyWithValue("role", "Moderator"))
			Expect(lines[0]).To(HaveKeyWithValue("side", "judge"))
			Expect(lines[1]).To(HaveKeyWithValue("type", "error"))
			Expect(lines[2]).To(Equal(map[string]any{"type": "end"}))
		})

		It("answers setup failures with a status code", func() {
			svc.streamFn = func(context.Context, service.DebateSpec) (*service.DebateStream, error) {
				return nil, fmt.Errorf("%w: gpt-9", catalog.ErrProfileNotFound)
			}

			w := post(router, "/debate/stream", debateBody(nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorBody(w)).To(ContainSubstring("gpt-9"))
		})
	})

	Describe("Enqueue", func() {
		It("accepts the debate", func() {
			svc.enqueueFn = func(context.Context, service.DebateSpec) (int64, error) {
				return 9001, nil
			}

			w := post(router, "/debates", debateBody(nil))
			Expect(w.Code).To(Equal(http.StatusAccepted))

			var resp map[string]string
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["debate_id"]).To(Equal("9001"))
			Expect(resp["events"]).To(Equal("/api/v1/debates/9001/events"))
		})

		It("reports a disabled queue", func() {
			svc.enqueueFn = func(context.Context, service.DebateSpec) (int64, error) {
				return 0, service.ErrQueueDisabled
			}

			w := post(router, "/debates", debateBody(nil))
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("HumanVsAI", func() {
		It("returns the agent's reply", func() {
			var got service.HumanTurnRequest
			svc.humanTurnFn = func(_ context.Context, req service.HumanTurnRequest) (*service.HumanTurnResult, error) {
				got = req
				return &service.HumanTurnResult{
					Topic:     req.Topic,
					HumanSide: req.HumanSide,
					AIRole:    "Con First Debater",
					Message:   debate.Turn{Speaker: "Con First Debater", Content: "Not so fast."},
				}, nil
			}

			body, _ := json.Marshal(map[string]any{
				"topic":         "Ban cars downtown",
				"ai_profile_id": "deepseek-chat",
				"ai_slot_index": 0,
				"history":       []map[string]string{{"role": "human", "content": "Cars are loud."}},
			})
			w := post(router, "/human-vs-ai", bytes.NewBuffer(body))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.HumanSide).To(Equal(debate.SidePro))
			Expect(got.AISide).To(BeEmpty())
			Expect(*got.AISlot).To(Equal(0))
			Expect(got.History).To(Equal([]service.HistoryEntry{{Role: "human", Content: "Cars are loud."}}))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["ai_role"]).To(Equal("Con First Debater"))
			Expect(resp["human_side"]).To(Equal("pro"))
			Expect(resp["ai_message"]).To(Equal(map[string]any{"role": "Con First Debater", "content": "Not so fast."}))
		})

		DescribeTable("rejects invalid bodies",
			func(body map[string]any) {
				raw, _ := json.Marshal(body)
				w := post(router, "/human-vs-ai", bytes.NewBuffer(raw))
				Expect(w.Code).To(Equal(http.StatusBadRequest))
			},
			Entry("judge side", map[string]any{"topic": "t", "ai_profile_id": "p", "human_side": "judge"}),
			Entry("slot out of range", map[string]any{"topic": "t", "ai_profile_id": "p", "ai_slot_index": 4}),
			Entry("missing profile", map[string]any{"topic": "t"}),
			Entry("history entry without role", map[string]any{"topic": "t", "ai_profile_id": "p", "history": []map[string]string{{"content": "hi"}}}),
		)
	})

	Describe("HumanVsAIJudge", func() {
		It("returns the verdict", func() {
			var got service.HumanJudgeRequest
			svc.humanJudgeFn = func(_ context.Context, req service.HumanJudgeRequest) (*service.HumanJudgeResult, error) {
				got = req
				return &service.HumanJudgeResult{
					Topic:     req.Topic,
					HumanSide: req.HumanSide,
					Message:   debate.Turn{Speaker: "Moderator", Content: "Con wins narrowly."},
				}, nil
			}

			body, _ := json.Marshal(map[string]any{
				"topic":            "Ban cars downtown",
				"human_side":       "con",
				"judge_profile_id": "gpt4.1",
			})
			w := post(router, "/human-vs-ai/judge", bytes.NewBuffer(body))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Judge.ProfileID).To(Equal("gpt4.1"))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["judge_message"]).To(Equal(map[string]any{"role": "Moderator", "content": "Con wins narrowly."}))
		})

		It("requires the human side", func() {
			body, _ := json.Marshal(map[string]any{"topic": "t", "judge_profile_id": "gpt4.1"})
			w := post(router, "/human-vs-ai/judge", bytes.NewBuffer(body))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
