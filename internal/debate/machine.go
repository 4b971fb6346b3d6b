package debate

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/arena/common/logger"
)

// Session is the state of one debate execution. It is driven once by a
// Machine and then discarded.
type Session struct {
	ID        int64
	Topic     string
	Round     int
	MaxRounds int
	Phase     Phase

	transcript *Transcript
	started    bool
}

// NewSession starts a debate on topic with maxRounds rebuttal rounds (1..MaxRoundsLimit).
func NewSession(id int64, topic string, maxRounds int) (*Session, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidSession)
	}
	if maxRounds < 1 || maxRounds > MaxRoundsLimit {
		return nil, fmt.Errorf("%w: rounds must be between 1 and %d, got %d", ErrInvalidSession, MaxRoundsLimit, maxRounds)
	}
	return &Session{
		ID:         id,
		Topic:      topic,
		Round:      1,
		MaxRounds:  maxRounds,
		Phase:      PhaseIntro,
		transcript: NewTranscript(),
	}, nil
}

// Turns returns the transcript produced so far.
func (s *Session) Turns() []Turn {
	return s.transcript.Turns()
}

// Snapshot is the session state observed after a phase completes.
type Snapshot struct {
	Phase Phase  // phase that just ran
	Round int    // round counter after the phase
	Turns []Turn // full transcript so far
}

func (s *Session) snapshot(phase Phase) Snapshot {
	return Snapshot{Phase: phase, Round: s.Round, Turns: s.transcript.Turns()}
}

// node runs one phase and returns the turn it appended.
type node interface {
	run(ctx context.Context, m *Machine, s *Session) (Turn, error)
}

// fixedNode is a phase spoken by a role fixed at construction.
type fixedNode struct {
	phase Phase
	role  Role
	task  string
}

func (n fixedNode) run(ctx context.Context, m *Machine, s *Session) (Turn, error) {
	return m.speak(ctx, s, n.role, n.phase, n.task)
}

// refuteNode picks its speaker from the team by the current round.
type refuteNode struct {
	phase       Phase
	team        Team
	task        func(round int) string
	closesRound bool
}

func (n refuteNode) run(ctx context.Context, m *Machine, s *Session) (Turn, error) {
	speaker := PickRefuter(n.team, s.Round)
	turn, err := m.speak(ctx, s, speaker, n.phase, n.task(s.Round))
	if err != nil {
		return Turn{}, err
	}
	if n.closesRound {
		s.Round++
	}
	return turn, nil
}

// Machine drives debates for one roster. It holds no per-debate state, so one
// Machine may drive any number of sessions, each on its own goroutine.
type Machine struct {
	roster   Roster
	composer Composer
	nodes    map[Phase]node
}

// NewMachine validates the roster and wires one node per phase.
func NewMachine(roster Roster, composer Composer) (*Machine, error) {
	if err := roster.Validate(); err != nil {
		return nil, err
	}

	return &Machine{
		roster:   roster,
		composer: composer,
		nodes: map[Phase]node{
			PhaseIntro:        fixedNode{phase: PhaseIntro, role: roster.Moderator, task: introTask},
			PhaseOpeningPro:   fixedNode{phase: PhaseOpeningPro, role: opener(roster.Pro), task: openingProTask},
			PhaseOpeningCon:   fixedNode{phase: PhaseOpeningCon, role: opener(roster.Con), task: openingConTask},
			PhaseRefutePro:    refuteNode{phase: PhaseRefutePro, team: roster.Pro, task: refuteProTask},
			PhaseRefuteCon:    refuteNode{phase: PhaseRefuteCon, team: roster.Con, task: refuteConTask, closesRound: true},
			PhaseClosingPro:   fixedNode{phase: PhaseClosingPro, role: closer(roster.Pro), task: closingProTask},
			PhaseClosingCon:   fixedNode{phase: PhaseClosingCon, role: closer(roster.Con), task: closingConTask},
			PhaseJudgeSummary: fixedNode{phase: PhaseJudgeSummary, role: roster.Moderator, task: verdictTask},
		},
	}, nil
}

// Roster returns the roster the machine was built with.
func (m *Machine) Roster() Roster {
	return m.roster
}

// Steps drives s from PhaseIntro to PhaseEnd, yielding a snapshot after every
// phase. ctx is checked before each phase. The sequence stops at the first
// error, which is yielded once. Breaking out of the range stops the debate
// before the next phase is scheduled.
func (m *Machine) Steps(ctx context.Context, s *Session) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		if s.started {
			yield(Snapshot{}, ErrSessionStarted)
			return
		}
		s.started = true

		fields := logger.LogFields{Component: "arena.debate.machine"}
		if s.ID != 0 {
			fields.DebateID = logger.Ptr(s.ID)
		}
		ctx := logger.WithLogFields(ctx, fields)

		start := time.Now()
		slog.InfoContext(ctx, "debate started", "max_rounds", s.MaxRounds)

		for phase := PhaseIntro; phase != PhaseEnd; phase = Next(phase, s) {
			if err := ctx.Err(); err != nil {
				slog.WarnContext(ctx, "debate cancelled", "phase", phase.String(), "error", err)
				yield(s.snapshot(phase), err)
				return
			}

			s.Phase = phase
			if _, err := m.runPhase(ctx, s, phase); err != nil {
				yield(s.snapshot(phase), err)
				return
			}

			if !yield(s.snapshot(phase), nil) {
				slog.InfoContext(ctx, "debate abandoned by consumer", "phase", phase.String())
				return
			}
		}

		s.Phase = PhaseEnd
		slog.InfoContext(ctx, "debate finished",
			"turns", s.transcript.Len(),
			"rounds", s.Round-1,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// Run drives s to completion and returns the transcript. On failure the turns
// produced before the failing phase are returned with the error.
func (m *Machine) Run(ctx context.Context, s *Session) ([]Turn, error) {
	for _, err := range m.Steps(ctx, s) {
		if err != nil {
			return s.Turns(), err
		}
	}
	return s.Turns(), nil
}

func (m *Machine) runPhase(ctx context.Context, s *Session, phase Phase) (Turn, error) {
	fields := logger.LogFields{Phase: logger.Ptr(phase.String())}
	if phase.Rebuttal() {
		fields.Round = logger.Ptr(s.Round)
	}
	ctx = logger.WithLogFields(ctx, fields)

	sc := logger.StartSpan(ctx, "debate.phase")
	defer sc.End()
	sc.SetAttributes(
		attribute.String("debate.phase", phase.String()),
		attribute.Int("debate.round", s.Round),
	)

	turn, err := m.nodes[phase].run(sc.Context(), m, s)
	if err != nil {
		sc.RecordError(err)
		return Turn{}, err
	}

	sc.SetAttributes(attribute.String("debate.speaker", turn.Speaker))
	slog.InfoContext(ctx, "debate phase completed",
		"speaker", turn.Speaker,
		"seq", turn.Seq)
	return turn, nil
}

// speak composes one turn and appends it. Nothing is appended on failure.
func (m *Machine) speak(ctx context.Context, s *Session, role Role, phase Phase, task string) (Turn, error) {
	turn, err := m.composer.Speak(ctx, role, phase, s.Topic, task, s.transcript.Turns())
	if err != nil {
		return Turn{}, err
	}
	if phase.Rebuttal() {
		turn.Round = s.Round
	}
	return s.transcript.append(turn), nil
}
