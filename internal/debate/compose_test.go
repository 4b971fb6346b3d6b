package debate_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/common/llm"
	"basegraph.app/arena/internal/debate"
)

var _ = Describe("Composer", func() {
	var composer debate.Composer

	BeforeEach(func() {
		composer = debate.NewComposer("", 0)
	})

	Describe("NewComposer", func() {
		It("defaults language and length budget", func() {
			Expect(composer.Language).To(Equal(debate.DefaultLanguage))
			Expect(composer.MaxChars).To(Equal(debate.DefaultMaxChars))
		})
	})

	Describe("SystemPrompt", func() {
		It("orders identity, persona, task and output blocks", func() {
			role := debate.Role{Name: "Pro First Debater", Persona: "Calm and precise."}
			prompt := composer.SystemPrompt(role, "Cities should ban cars", "Open the case.")

			identity := strings.Index(prompt, "[Identity]")
			persona := strings.Index(prompt, "[Persona and style]")
			task := strings.Index(prompt, "[Current task]")
			output := strings.Index(prompt, "[Output requirements]")

			Expect(identity).To(Equal(0))
			Expect(persona).To(BeNumerically(">", identity))
			Expect(task).To(BeNumerically(">", persona))
			Expect(output).To(BeNumerically(">", task))

			Expect(prompt).To(ContainSubstring(`"Pro First Debater"`))
			Expect(prompt).To(ContainSubstring("Cities should ban cars"))
			Expect(prompt).To(ContainSubstring("Calm and precise."))
			Expect(prompt).To(ContainSubstring("persona consistent"))
			Expect(prompt).To(ContainSubstring("task requirements and the persona style conflict"))
			Expect(prompt).To(ContainSubstring("Open the case."))
		})

		It("omits persona framing when the role has none", func() {
			prompt := composer.SystemPrompt(debate.Role{Name: "Con First Debater"}, "t", "task")
			Expect(prompt).NotTo(ContainSubstring("[Persona and style]"))
			Expect(prompt).NotTo(ContainSubstring("persona consistent"))
		})

		It("carries the configured language and length budget", func() {
			prompt := debate.NewComposer("French", 250).SystemPrompt(debate.Role{Name: "Moderator"}, "t", "task")
			Expect(prompt).To(ContainSubstring("Reply in French"))
			Expect(prompt).To(ContainSubstring("Stay within 250 characters"))
		})
	})

	Describe("Messages", func() {
		It("sends system prompt, history in order and the trailing directive", func() {
			history := []debate.Turn{
				{Speaker: "Moderator", Content: "welcome"},
				{Speaker: "human", Content: "I say yes", Human: true},
				{Speaker: "Con Debater", Content: "I say no"},
			}
			msgs := composer.Messages(debate.Role{Name: "Con Debater"}, "t", "task", history)

			Expect(msgs).To(HaveLen(5))
			Expect(msgs[0].Role).To(Equal(llm.RoleSystem))
			Expect(msgs[1]).To(Equal(llm.Message{Role: llm.RoleAssistant, Name: "Moderator", Content: "welcome"}))
			Expect(msgs[2].Role).To(Equal(llm.RoleUser))
			Expect(msgs[2].Content).To(Equal("I say yes"))
			Expect(msgs[3].Role).To(Equal(llm.RoleAssistant))
			Expect(msgs[4].Role).To(Equal(llm.RoleUser))
			Expect(msgs[4].Content).To(ContainSubstring("continue this round of the debate"))
		})
	})

	Describe("Speak", func() {
		It("labels the turn with the speaker and positions it after history", func() {
			mock := &mockCompleter{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
				return &llm.Response{Content: "my speech"}, nil
			}}
			history := []debate.Turn{{Seq: 1, Speaker: "Moderator", Content: "welcome"}}

			turn, err := composer.Speak(context.Background(), debate.Role{Name: "Pro First Debater", LLM: mock},
				debate.PhaseOpeningPro, "t", "task", history)

			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Speaker).To(Equal("Pro First Debater"))
			Expect(turn.Content).To(Equal("my speech"))
			Expect(turn.Seq).To(Equal(2))
			Expect(turn.Phase).To(Equal(debate.PhaseOpeningPro))
		})

		It("wraps completion failures without retrying", func() {
			providerErr := errors.New("provider exploded")
			mock := &mockCompleter{completeFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
				return nil, providerErr
			}}

			_, err := composer.Speak(context.Background(), debate.Role{Name: "Moderator", LLM: mock},
				debate.PhaseIntro, "t", "task", nil)

			var completionErr *debate.CompletionError
			Expect(errors.As(err, &completionErr)).To(BeTrue())
			Expect(completionErr.Phase).To(Equal(debate.PhaseIntro))
			Expect(completionErr.Speaker).To(Equal("Moderator"))
			Expect(errors.Is(err, providerErr)).To(BeTrue())
			Expect(mock.calls()).To(Equal(1))
		})
	})
})
