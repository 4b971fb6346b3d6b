package model

import "time"

// PersonaPreset is a named speaking style that can be applied to any debate role.
type PersonaPreset struct {
	ID          string     `json:"id" yaml:"id"`
	Label       string     `json:"label" yaml:"label"`
	Description string     `json:"description" yaml:"description"`
	Prompt      string     `json:"prompt" yaml:"prompt"`
	Position    int        `json:"-" yaml:"-"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// PersonaPresetMeta is the public view of a preset; the prompt stays server side.
type PersonaPresetMeta struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (p PersonaPreset) Meta() PersonaPresetMeta {
	label := p.Label
	if label == "" {
		label = p.ID
	}
	return PersonaPresetMeta{ID: p.ID, Label: label, Description: p.Description}
}
