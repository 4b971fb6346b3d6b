package dto

import (
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/service"
)

// AgentConfig seats one role. persona wins over persona_preset_id.
type AgentConfig struct {
	ProfileID       string `json:"profile_id" binding:"required,max=100" jsonschema:"description=Model profile id from /api/v1/models"`
	PersonaPresetID string `json:"persona_preset_id,omitempty" binding:"max=100" jsonschema:"description=Persona preset id from /api/v1/personas"`
	Persona         string `json:"persona,omitempty" binding:"max=2000" jsonschema:"description=Free-form persona that takes precedence over the preset"`
}

func (a AgentConfig) toSpec() service.AgentSpec {
	return service.AgentSpec{
		ProfileID:       a.ProfileID,
		PersonaPresetID: a.PersonaPresetID,
		Persona:         a.Persona,
	}
}

type TeamConfig struct {
	First  AgentConfig `json:"first"`
	Second AgentConfig `json:"second"`
	Third  AgentConfig `json:"third"`
	Fourth AgentConfig `json:"fourth"`
}

func (t TeamConfig) toSpec() service.TeamSpec {
	return service.TeamSpec{
		First:  t.First.toSpec(),
		Second: t.Second.toSpec(),
		Third:  t.Third.toSpec(),
		Fourth: t.Fourth.toSpec(),
	}
}

type DebateAgentsConfig struct {
	Judge AgentConfig `json:"judge"`
	Pro   TeamConfig  `json:"pro"`
	Con   TeamConfig  `json:"con"`
}

type DebateRequest struct {
	Topic  string             `json:"topic" binding:"required,max=500"`
	Rounds int                `json:"rounds,omitempty" binding:"omitempty,min=1,max=10" jsonschema:"minimum=1,maximum=10,default=2"`
	Agents DebateAgentsConfig `json:"agents"`
}

func (r DebateRequest) ToSpec() service.DebateSpec {
	return service.DebateSpec{
		Topic:  r.Topic,
		Rounds: r.Rounds,
		Judge:  r.Agents.Judge.toSpec(),
		Pro:    r.Agents.Pro.toSpec(),
		Con:    r.Agents.Con.toSpec(),
	}
}

type DebateMessage struct {
	Role    string `json:"role" binding:"required,max=100"`
	Content string `json:"content"`
}

type DebateResponse struct {
	DebateID int64               `json:"debate_id,string"`
	Topic    string              `json:"topic"`
	Rounds   int                 `json:"rounds"`
	Agents   []service.AgentInfo `json:"agents"`
	Messages []DebateMessage     `json:"messages"`
}

func ToDebateResponse(r *service.DebateResult) *DebateResponse {
	messages := make([]DebateMessage, 0, len(r.Turns))
	for _, t := range r.Turns {
		messages = append(messages, toMessage(t))
	}
	return &DebateResponse{
		DebateID: r.ID,
		Topic:    r.Topic,
		Rounds:   r.Rounds,
		Agents:   r.Agents,
		Messages: messages,
	}
}

type EnqueueDebateResponse struct {
	DebateID int64  `json:"debate_id,string"`
	Events   string `json:"events"`
}

func toMessage(t debate.Turn) DebateMessage {
	return DebateMessage{Role: t.Speaker, Content: t.Content}
}

func toHistory(items []DebateMessage) []service.HistoryEntry {
	history := make([]service.HistoryEntry, 0, len(items))
	for _, m := range items {
		history = append(history, service.HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return history
}
