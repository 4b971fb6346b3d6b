package dto

import (
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/service"
)

type HumanVsAIRequest struct {
	Topic             string          `json:"topic" binding:"required,max=500"`
	HumanSide         debate.Side     `json:"human_side,omitempty" binding:"omitempty,oneof=pro con" jsonschema:"enum=pro,enum=con,default=pro"`
	AISide            debate.Side     `json:"ai_side,omitempty" binding:"omitempty,oneof=pro con" jsonschema:"enum=pro,enum=con,description=Defaults to the side opposite human_side"`
	AIRole            string          `json:"ai_role,omitempty" binding:"max=100"`
	AISlotIndex       *int            `json:"ai_slot_index,omitempty" binding:"omitempty,min=0,max=3" jsonschema:"minimum=0,maximum=3,description=0 opens and 1 or 2 rebut while 3 closes"`
	AIProfileID       string          `json:"ai_profile_id" binding:"required,max=100"`
	AIPersonaPresetID string          `json:"ai_persona_preset_id,omitempty" binding:"max=100"`
	AIPersona         string          `json:"ai_persona,omitempty" binding:"max=2000"`
	History           []DebateMessage `json:"history,omitempty" binding:"dive"`
}

func (r HumanVsAIRequest) ToServiceRequest() service.HumanTurnRequest {
	humanSide := r.HumanSide
	if humanSide == "" {
		humanSide = debate.SidePro
	}
	return service.HumanTurnRequest{
		Topic:     r.Topic,
		HumanSide: humanSide,
		AISide:    r.AISide,
		AIRole:    r.AIRole,
		AISlot:    r.AISlotIndex,
		Agent: service.AgentSpec{
			ProfileID:       r.AIProfileID,
			PersonaPresetID: r.AIPersonaPresetID,
			Persona:         r.AIPersona,
		},
		History: toHistory(r.History),
	}
}

type HumanVsAIResponse struct {
	Topic     string        `json:"topic"`
	HumanSide debate.Side   `json:"human_side"`
	AIRole    string        `json:"ai_role"`
	AIMessage DebateMessage `json:"ai_message"`
}

func ToHumanVsAIResponse(r *service.HumanTurnResult) *HumanVsAIResponse {
	return &HumanVsAIResponse{
		Topic:     r.Topic,
		HumanSide: r.HumanSide,
		AIRole:    r.AIRole,
		AIMessage: toMessage(r.Message),
	}
}

type HumanVsAIJudgeRequest struct {
	Topic                string          `json:"topic" binding:"required,max=500"`
	HumanSide            debate.Side     `json:"human_side" binding:"required,oneof=pro con" jsonschema:"enum=pro,enum=con"`
	JudgeProfileID       string          `json:"judge_profile_id" binding:"required,max=100"`
	JudgePersonaPresetID string          `json:"judge_persona_preset_id,omitempty" binding:"max=100" jsonschema:"default=neutral_judge"`
	JudgePersona         string          `json:"judge_persona,omitempty" binding:"max=2000"`
	History              []DebateMessage `json:"history,omitempty" binding:"dive"`
}

func (r HumanVsAIJudgeRequest) ToServiceRequest() service.HumanJudgeRequest {
	return service.HumanJudgeRequest{
		Topic:     r.Topic,
		HumanSide: r.HumanSide,
		Judge: service.AgentSpec{
			ProfileID:       r.JudgeProfileID,
			PersonaPresetID: r.JudgePersonaPresetID,
			Persona:         r.JudgePersona,
		},
		History: toHistory(r.History),
	}
}

type HumanVsAIJudgeResponse struct {
	Topic        string        `json:"topic"`
	HumanSide    debate.Side   `json:"human_side"`
	JudgeMessage DebateMessage `json:"judge_message"`
}

func ToHumanVsAIJudgeResponse(r *service.HumanJudgeResult) *HumanVsAIJudgeResponse {
	return &HumanVsAIJudgeResponse{
		Topic:        r.Topic,
		HumanSide:    r.HumanSide,
		JudgeMessage: toMessage(r.Message),
	}
}
