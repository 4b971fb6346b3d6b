package model

// Provider selects the client family a model profile is served by.
type Provider string

const (
	// ProviderOpenAI covers OpenAI and every OpenAI-compatible vendor reached via a base URL.
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic:
		return true
	default:
		return false
	}
}

// ModelProfile maps a public profile id to a concrete model and the environment
// variables holding its credentials.
type ModelProfile struct {
	ID          string   `json:"id" yaml:"id"`
	Label       string   `json:"label" yaml:"label"`
	Group       string   `json:"group" yaml:"group"`
	Provider    Provider `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	APIKeyEnv   string   `json:"-" yaml:"api_key_env"`
	BaseURLEnv  string   `json:"-" yaml:"base_url_env"`
	Temperature *float64 `json:"-" yaml:"temperature"`
}

// ModelProfileMeta is the public view of a profile. It never carries credentials.
type ModelProfileMeta struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Model string `json:"model"`
	Group string `json:"group"`
}

func (p ModelProfile) Meta() ModelProfileMeta {
	label := p.Label
	if label == "" {
		label = p.ID
	}
	return ModelProfileMeta{ID: p.ID, Label: label, Model: p.Model, Group: p.Group}
}
