package debate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/arena/common/llm"
	"basegraph.app/arena/common/logger"
)

const (
	DefaultLanguage = "English"
	DefaultMaxChars = 400
)

// Composer builds the instruction context for one speaking turn and asks the
// role's completer for it.
type Composer struct {
	Language string // working language of the transcript
	MaxChars int    // per-turn length budget
}

// NewComposer fills unset values with the defaults.
func NewComposer(language string, maxChars int) Composer {
	if language == "" {
		language = DefaultLanguage
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return Composer{Language: language, MaxChars: maxChars}
}

// SystemPrompt renders the framing blocks in order: identity, persona (only
// when present), task and output constraints.
func (c Composer) SystemPrompt(role Role, topic, task string) string {
	var b strings.Builder

	b.WriteString("[Identity]\n")
	fmt.Fprintf(&b, "You are playing %q in a formal debate.\n", role.Name)
	fmt.Fprintf(&b, "The motion is: %s\n\n", topic)

	if role.Persona != "" {
		b.WriteString("[Persona and style]\n")
		b.WriteString(role.Persona)
		b.WriteString("\n")
		b.WriteString(personaConsistency + "\n")
		b.WriteString(personaPrecedence + "\n")
		b.WriteString(personaAudible + "\n\n")
	}

	b.WriteString("[Current task]\n")
	b.WriteString(task)
	b.WriteString("\n\n")

	b.WriteString("[Output requirements]\n")
	fmt.Fprintf(&b, "1) Reply in %s;\n", c.language())
	b.WriteString("2) Do not mention that a language model is being used and do not explain the rules, give only your debate speech;\n")
	fmt.Fprintf(&b, "3) Stay within %d characters;\n", c.maxChars())
	b.WriteString("4) Let the persona described above come through clearly in your tone and style;\n")
	b.WriteString("5) Give your speech a clear logical structure and avoid pure emotion or empty slogans.")

	return b.String()
}

// Messages assembles the full conversation for one turn: the system prompt,
// every prior turn in order and the trailing directive.
func (c Composer) Messages(role Role, topic, task string, history []Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: c.SystemPrompt(role, topic, task)})

	for _, turn := range history {
		msg := llm.Message{Role: llm.RoleAssistant, Name: turn.Speaker, Content: turn.Content}
		if turn.Human {
			msg.Role = llm.RoleUser
		}
		msgs = append(msgs, msg)
	}

	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: continueDirective})
	return msgs
}

// Speak produces one turn for role without touching any transcript. The
// returned turn carries the sequence number it would take after history.
// Completion failures come back as *CompletionError.
func (c Composer) Speak(ctx context.Context, role Role, phase Phase, topic, task string, history []Turn) (Turn, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Speaker: logger.Ptr(role.Name)})

	start := time.Now()
	resp, err := role.LLM.Complete(ctx, llm.Request{Messages: c.Messages(role, topic, task, history)})
	if err != nil {
		slog.ErrorContext(ctx, "completion failed",
			"error", err,
			"model", role.LLM.Model(),
			"duration_ms", time.Since(start).Milliseconds())
		return Turn{}, &CompletionError{Phase: phase, Speaker: role.Name, Err: err}
	}

	slog.DebugContext(ctx, "completion received",
		"model", role.LLM.Model(),
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len([]rune(resp.Content)),
		"preview", logger.Truncate(resp.Content, 80))

	return Turn{
		Seq:     len(history) + 1,
		Speaker: role.Name,
		Content: resp.Content,
		Phase:   phase,
	}, nil
}

func (c Composer) language() string {
	if c.Language == "" {
		return DefaultLanguage
	}
	return c.Language
}

func (c Composer) maxChars() int {
	if c.MaxChars <= 0 {
		return DefaultMaxChars
	}
	return c.MaxChars
}
