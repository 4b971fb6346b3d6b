package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"basegraph.app/arena/common/llm"
	"basegraph.app/arena/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrProfileNotFound is returned by Resolve for an unknown profile id.
	ErrProfileNotFound = errors.New("unknown model profile")

	// ErrProfileUnavailable is returned by Resolve when a known profile cannot
	// be served, typically because its API key variable is unset.
	ErrProfileUnavailable = errors.New("model profile unavailable")
)

// File is the on-disk shape of a catalogue.
type File struct {
	DefaultTemperature *float64              `yaml:"default_temperature"`
	Profiles           []model.ModelProfile  `yaml:"profiles"`
	Presets            []model.PersonaPreset `yaml:"presets"`
}

// ClientFactory builds a completer from resolved client settings.
type ClientFactory func(cfg llm.Config) (llm.Completer, error)

type Option func(*Catalog)

// WithEnvLookup replaces os.Getenv as the source of profile credentials.
func WithEnvLookup(lookup func(key string) string) Option {
	return func(c *Catalog) {
		c.lookupEnv = lookup
	}
}

// WithClientFactory replaces llm.New.
func WithClientFactory(factory ClientFactory) Option {
	return func(c *Catalog) {
		c.newClient = factory
	}
}

// WithCompleterPolicy bounds every resolved completer by timeout and retries
// failed calls up to retries extra times.
func WithCompleterPolicy(timeout time.Duration, retries int, backoff time.Duration) Option {
	return func(c *Catalog) {
		c.timeout = timeout
		c.retries = retries
		c.backoff = backoff
	}
}

// Catalog is the read-only model-profile lookup and persona preset table.
// It is safe for concurrent use.
type Catalog struct {
	temperature *float64
	profiles    []model.ModelProfile
	profileByID map[string]int
	presets     []model.PersonaPreset
	presetByID  map[string]int

	lookupEnv func(string) string
	newClient ClientFactory
	timeout   time.Duration
	retries   int
	backoff   time.Duration
}

// Load reads the catalogue at path, or the embedded default when path is empty.
func Load(path string, opts ...Option) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		data = content
	}

	c, err := Parse(data, opts...)
	if err != nil && path != "" {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, err
}

// Parse decodes and validates a YAML catalogue.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: payload is empty")
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(f, opts...)
}

// New builds a catalogue from already decoded values.
func New(f File, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		temperature: f.DefaultTemperature,
		profileByID: make(map[string]int, len(f.Profiles)),
		lookupEnv:   os.Getenv,
		newClient:   llm.New,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, p := range f.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: profile without id")
		}
		if p.Model == "" {
			return nil, fmt.Errorf("catalog: profile %s: model is required", p.ID)
		}
		if p.Provider == "" {
			p.Provider = model.ProviderOpenAI
		}
		if !p.Provider.Valid() {
			return nil, fmt.Errorf("catalog: profile %s: unsupported provider %q", p.ID, p.Provider)
		}
		if _, dup := c.profileByID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate profile %s", p.ID)
		}
		c.profileByID[p.ID] = len(c.profiles)
		c.profiles = append(c.profiles, p)
	}

	presets := make([]model.PersonaPreset, 0, len(f.Presets))
	seen := make(map[string]bool, len(f.Presets))
	for i, p := range f.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: preset without id")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog: duplicate preset %s", p.ID)
		}
		seen[p.ID] = true
		p.Position = i
		presets = append(presets, p)
	}
	c.setPresets(presets)

	return c, nil
}

func (c *Catalog) setPresets(presets []model.PersonaPreset) {
	c.presets = presets
	c.presetByID = make(map[string]int, len(presets))
	for i, p := range presets {
		c.presetByID[p.ID] = i
	}
}

// WithPresets returns a copy of the catalogue with extra presets overlaid.
// An extra preset replaces a built-in one with the same id in place, new ids
// follow the built-ins ordered by Position.
func (c *Catalog) WithPresets(extra []model.PersonaPreset) *Catalog {
	if len(extra) == 0 {
		return c
	}

	clone := *c
	merged := slices.Clone(c.presets)

	added := make([]model.PersonaPreset, 0, len(extra))
	for _, p := range extra {
		if i, ok := c.presetByID[p.ID]; ok {
			p.Position = merged[i].Position
			merged[i] = p
			continue
		}
		added = append(added, p)
	}
	slices.SortStableFunc(added, func(a, b model.PersonaPreset) int {
		return a.Position - b.Position
	})

	clone.setPresets(append(merged, added...))
	return &clone
}

// Profile returns the profile with id.
func (c *Catalog) Profile(id string) (model.ModelProfile, bool) {
	i, ok := c.profileByID[id]
	if !ok {
		return model.ModelProfile{}, false
	}
	return c.profiles[i], true
}

// Preset returns the persona preset with id.
func (c *Catalog) Preset(id string) (model.PersonaPreset, bool) {
	i, ok := c.presetByID[id]
	if !ok {
		return model.PersonaPreset{}, false
	}
	return c.presets[i], true
}

// PresetPrompt satisfies debate.PresetTable.
func (c *Catalog) PresetPrompt(id string) (string, bool) {
	p, ok := c.Preset(id)
	if !ok || p.Prompt == "" {
		return "", false
	}
	return p.Prompt, true
}

// ProfilesMeta lists the public view of every profile in catalogue order.
func (c *Catalog) ProfilesMeta() []model.ModelProfileMeta {
	out := make([]model.ModelProfileMeta, len(c.profiles))
	for i, p := range c.profiles {
		out[i] = p.Meta()
	}
	return out
}

// PresetsMeta lists the public view of every preset in catalogue order.
func (c *Catalog) PresetsMeta() []model.PersonaPresetMeta {
	out := make([]model.PersonaPresetMeta, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.Meta()
	}
	return out
}

// Resolve builds a completer for profileID. Unknown ids fail with
// ErrProfileNotFound, a profile whose key variable is unset fails with
// ErrProfileUnavailable.
func (c *Catalog) Resolve(profileID string) (llm.Completer, error) {
	p, ok := c.Profile(profileID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}

	cfg := llm.Config{
		Provider:    string(p.Provider),
		Model:       p.Model,
		Temperature: p.Temperature,
	}
	if cfg.Temperature == nil {
		cfg.Temperature = c.temperature
	}
	if p.APIKeyEnv != "" {
		cfg.APIKey = c.lookupEnv(p.APIKeyEnv)
	}
	if p.BaseURLEnv != "" {
		cfg.BaseURL = c.lookupEnv(p.BaseURLEnv)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s: %s is not set", ErrProfileUnavailable, profileID, p.APIKeyEnv)
	}

	client, err := c.newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProfileUnavailable, profileID, err)
	}

	return llm.WithRetry(llm.WithTimeout(client, c.timeout), c.retries+1, c.backoff), nil
}

// PresetSource supplies persona presets kept outside the catalogue file.
type PresetSource interface {
	List(ctx context.Context) ([]model.PersonaPreset, error)
}

// Overlay returns a copy of the catalogue with src's presets laid over it.
func (c *Catalog) Overlay(ctx context.Context, src PresetSource) (*Catalog, error) {
	extra, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing stored presets: %w", err)
	}
	return c.WithPresets(extra), nil
}
