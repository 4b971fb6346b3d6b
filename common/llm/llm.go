package llm

import (
	"context"
	"fmt"
	"regexp"
)

var nameInvalidChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config holds LLM client configuration.
type Config struct {
	Provider    string   // "openai" or "anthropic"; OpenAI-compatible vendors use "openai" with a BaseURL
	APIKey      string   // Required: API key for the provider
	BaseURL     string   // Optional: custom API endpoint
	Model       string   // Model name (e.g., "gpt-4.1", "deepseek-chat")
	Temperature *float64 // nil = model default
	MaxTokens   int      // 0 = client default
}

// Completer is the opaque completion capability a debate role speaks through.
// Implementations block until the provider answers or ctx ends.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// Request is an ordered conversation sent to the model.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// Message represents a conversation message.
type Message struct {
	Role    string // "system", "user", "assistant"
	Name    string // Optional: participant name, sanitized before it reaches the provider
	Content string
}

// Response contains the assistant text.
type Response struct {
	Content          string
	FinishReason     string // "stop", "length"
	PromptTokens     int
	CompletionTokens int
}

// CompleterFunc adapts a plain function to Completer. Handy for tests and scripted demos.
type CompleterFunc func(ctx context.Context, req Request) (*Response, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func (f CompleterFunc) Model() string {
	return "func"
}

// New creates a Completer for cfg.Provider. Defaults to OpenAI, which also covers
// the OpenAI-compatible vendors reached through BaseURL.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// SanitizeName converts a display name to a valid OpenAI name parameter.
// The name must match ^[a-zA-Z0-9_-]{1,64}$.
// Invalid characters are replaced with underscores, and the result is truncated to 64 characters.
func SanitizeName(name string) string {
	sanitized := nameInvalidChars.ReplaceAllString(name, "_")
	if len(sanitized) > 64 {
		sanitized = sanitized[:64]
	}
	return sanitized
}

func Temp(t float64) *float64 {
	return &t
}
