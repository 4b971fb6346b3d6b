package service

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"basegraph.app/arena/internal/debate"
)

var (
	// ErrInvalidRequest is returned for request fields the debate core does not check itself.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrQueueDisabled is returned by Enqueue when no job queue is configured.
	ErrQueueDisabled = errors.New("async debates are not enabled")
)

// AgentSpec seats one role: which model profile speaks and with which persona.
type AgentSpec struct {
	ProfileID       string `json:"profile_id"`
	PersonaPresetID string `json:"persona_preset_id,omitempty"`
	Persona         string `json:"persona,omitempty"`
}

func (a AgentSpec) empty() bool {
	return strings.TrimSpace(a.ProfileID) == ""
}

// TeamSpec lists the four slots of a team. Trailing slots may be left empty
// to seat a shorter team.
type TeamSpec struct {
	First  AgentSpec `json:"first"`
	Second AgentSpec `json:"second"`
	Third  AgentSpec `json:"third"`
	Fourth AgentSpec `json:"fourth"`
}

// Members returns the seated slots in order.
func (t TeamSpec) Members(side debate.Side) ([]AgentSpec, error) {
	slots := []AgentSpec{t.First, t.Second, t.Third, t.Fourth}
	for len(slots) > 0 && slots[len(slots)-1].empty() {
		slots = slots[:len(slots)-1]
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: %s team is empty", debate.ErrInvalidRoster, side)
	}
	for i, s := range slots {
		if s.empty() {
			return nil, fmt.Errorf("%w: %s has no model profile", debate.ErrInvalidRoster, debate.DebaterName(side, i))
		}
	}
	return slots, nil
}

// DebateSpec is a full debate request. It is also the async job payload.
type DebateSpec struct {
	Topic  string    `json:"topic"`
	Rounds int       `json:"rounds,omitempty"`
	Judge  AgentSpec `json:"judge"`
	Pro    TeamSpec  `json:"pro"`
	Con    TeamSpec  `json:"con"`
}

// AgentInfo describes a seated role in results.
type AgentInfo struct {
	Name      string      `json:"name"`
	Side      debate.Side `json:"side"`
	ProfileID string      `json:"profile_id"`
	Model     string      `json:"model"`
}

type DebateResult struct {
	ID     int64
	Topic  string
	Rounds int
	Agents []AgentInfo
	Turns  []debate.Turn
}

// DebateStream carries a prepared debate whose events are produced lazily.
// Nothing runs until Events is ranged over.
type DebateStream struct {
	ID     int64
	Topic  string
	Rounds int
	Agents []AgentInfo
	Events iter.Seq[debate.Event]
}

// HistoryEntry is one prior turn supplied by a human-vs-agent client.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type HumanTurnRequest struct {
	Topic     string
	HumanSide debate.Side
	AISide    debate.Side // empty = opposite of HumanSide
	AIRole    string
	AISlot    *int // 0..3
	Agent     AgentSpec
	History   []HistoryEntry
}

type HumanTurnResult struct {
	Topic     string
	HumanSide debate.Side
	AIRole    string
	Message   debate.Turn
}

type HumanJudgeRequest struct {
	Topic     string
	HumanSide debate.Side
	Judge     AgentSpec
	History   []HistoryEntry
}

type HumanJudgeResult struct {
	Topic     string
	HumanSide debate.Side
	Message   debate.Turn
}

func historyTurns(entries []HistoryEntry) []debate.Turn {
	turns := make([]debate.Turn, 0, len(entries))
	for _, e := range entries {
		turns = append(turns, debate.Turn{
			Speaker: e.Role,
			Content: e.Content,
			Human:   debate.IsHumanSpeaker(e.Role),
		})
	}
	return turns
}

func debatingSide(side debate.Side, field string) error {
	if side != debate.SidePro && side != debate.SideCon {
		return fmt.Errorf("%w: %s must be %q or %q", ErrInvalidRequest, field, debate.SidePro, debate.SideCon)
	}
	return nil
}
