package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/internal/debate"
)

// HumanTurn produces the agent's reply in a human-vs-agent debate. The agent
// argues the side opposite the human unless the request says otherwise.
func (s *debateService) HumanTurn(ctx context.Context, req HumanTurnRequest) (*HumanTurnResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Mode:      "human_vs_ai",
		Component: "arena.service.debate",
	})

	if err := debatingSide(req.HumanSide, "human_side"); err != nil {
		return nil, err
	}
	aiSide := req.AISide
	if aiSide == "" {
		aiSide = req.HumanSide.Opposite()
	}
	if err := debatingSide(aiSide, "ai_side"); err != nil {
		return nil, err
	}
	if req.AISlot != nil && (*req.AISlot < 0 || *req.AISlot >= debate.TeamSize) {
		return nil, fmt.Errorf("%w: ai_slot must be between 0 and %d", ErrInvalidRequest, debate.TeamSize-1)
	}

	client, err := s.catalog.Resolve(req.Agent.ProfileID)
	if err != nil {
		return nil, err
	}

	name := debate.AgentName(req.AIRole, aiSide, req.AISlot)
	role := debate.Role{
		Name:    name,
		Persona: debate.ResolvePersona(req.Agent.Persona, req.Agent.PersonaPresetID, s.catalog, debate.DefaultPersona(aiSide, req.AISlot)),
		LLM:     client,
	}

	history := historyTurns(req.History)
	turn, err := s.composer.SpeakOnce(ctx, role, req.Topic, debate.SlotTask(name, req.AISlot, len(history)), history)
	if err != nil {
		slog.ErrorContext(ctx, "agent turn failed", "error", err, "ai_role", name)
		return nil, err
	}

	return &HumanTurnResult{
		Topic:     req.Topic,
		HumanSide: req.HumanSide,
		AIRole:    name,
		Message:   turn,
	}, nil
}

// HumanJudge has the moderator deliver a verdict over a human-vs-agent history.
func (s *debateService) HumanJudge(ctx context.Context, req HumanJudgeRequest) (*HumanJudgeResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Mode:      "human_vs_ai_judge",
		Component: "arena.service.debate",
	})

	if err := debatingSide(req.HumanSide, "human_side"); err != nil {
		return nil, err
	}

	client, err := s.catalog.Resolve(req.Judge.ProfileID)
	if err != nil {
		return nil, err
	}

	presetID := req.Judge.PersonaPresetID
	if presetID == "" {
		presetID = NeutralJudgePreset
	}
	role := debate.Role{
		Name:    debate.ModeratorName,
		Persona: debate.ResolvePersona(req.Judge.Persona, presetID, s.catalog, s.moderatorPersona()),
		LLM:     client,
	}

	turn, err := s.composer.SpeakOnce(ctx, role, req.Topic, debate.HumanVsAgentVerdictTask, historyTurns(req.History))
	if err != nil {
		slog.ErrorContext(ctx, "verdict failed", "error", err)
		return nil, err
	}

	return &HumanJudgeResult{
		Topic:     req.Topic,
		HumanSide: req.HumanSide,
		Message:   turn,
	}, nil
}
