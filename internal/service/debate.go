package service

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"

	"basegraph.app/arena/common/id"
	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/model"
	"basegraph.app/arena/internal/queue"
)

// NeutralJudgePreset is the preset the moderator falls back to when a request names no persona.
const NeutralJudgePreset = "neutral_judge"

type DebateService interface {
	Models() []model.ModelProfileMeta
	Personas() []model.PersonaPresetMeta
	Run(ctx context.Context, spec DebateSpec) (*DebateResult, error)
	Stream(ctx context.Context, spec DebateSpec) (*DebateStream, error)
	Enqueue(ctx context.Context, spec DebateSpec) (int64, error)
	Execute(ctx context.Context, debateID int64, spec DebateSpec) error
	HumanTurn(ctx context.Context, req HumanTurnRequest) (*HumanTurnResult, error)
	HumanJudge(ctx context.Context, req HumanJudgeRequest) (*HumanJudgeResult, error)
}

type debateService struct {
	catalog       *catalog.Catalog
	composer      debate.Composer
	producer      queue.Producer
	broadcaster   queue.Broadcaster
	defaultRounds int
}

// NewDebateService wires the debate core to the catalogue. producer may be nil,
// in which case Enqueue fails with ErrQueueDisabled.
func NewDebateService(cat *catalog.Catalog, composer debate.Composer, producer queue.Producer, broadcaster queue.Broadcaster, defaultRounds int) DebateService {
	if broadcaster == nil {
		broadcaster = queue.NewNoopBroadcaster()
	}
	if defaultRounds <= 0 {
		defaultRounds = 2
	}
	return &debateService{
		catalog:       cat,
		composer:      composer,
		producer:      producer,
		broadcaster:   broadcaster,
		defaultRounds: defaultRounds,
	}
}

func (s *debateService) Models() []model.ModelProfileMeta {
	return s.catalog.ProfilesMeta()
}

func (s *debateService) Personas() []model.PersonaPresetMeta {
	return s.catalog.PresetsMeta()
}

func (s *debateService) Run(ctx context.Context, spec DebateSpec) (*DebateResult, error) {
	debateID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DebateID:  &debateID,
		Mode:      "batch",
		Component: "arena.service.debate",
	})

	session, machine, agents, err := s.prepare(debateID, spec)
	if err != nil {
		slog.WarnContext(ctx, "rejected debate request", "error", err)
		return nil, err
	}

	turns, err := machine.Run(ctx, session)
	if err != nil {
		slog.ErrorContext(ctx, "debate failed", "error", err, "turns", len(turns))
		return nil, fmt.Errorf("running debate: %w", err)
	}

	slog.InfoContext(ctx, "debate completed", "turns", len(turns), "rounds", session.MaxRounds)
	return &DebateResult{
		ID:     debateID,
		Topic:  session.Topic,
		Rounds: session.MaxRounds,
		Agents: agents,
		Turns:  turns,
	}, nil
}

// Stream validates the request and returns a lazy event sequence. Every event
// is also broadcast to spectators of the debate.
func (s *debateService) Stream(ctx context.Context, spec DebateSpec) (*DebateStream, error) {
	debateID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DebateID:  &debateID,
		Mode:      "stream",
		Component: "arena.service.debate",
	})

	session, machine, agents, err := s.prepare(debateID, spec)
	if err != nil {
		slog.WarnContext(ctx, "rejected debate request", "error", err)
		return nil, err
	}

	return &DebateStream{
		ID:     debateID,
		Topic:  session.Topic,
		Rounds: session.MaxRounds,
		Agents: agents,
		Events: s.broadcast(ctx, debateID, debate.Stream(machine.Steps(ctx, session))),
	}, nil
}

// Enqueue validates the request up front so a worker never receives a debate
// that cannot be seated, then hands it to the job queue.
func (s *debateService) Enqueue(ctx context.Context, spec DebateSpec) (int64, error) {
	if s.producer == nil {
		return 0, ErrQueueDisabled
	}

	spec = s.withDefaults(spec)
	if _, _, _, err := s.prepare(0, spec); err != nil {
		return 0, err
	}

	payload, err := json.Marshal(spec)
	if err != nil {
		return 0, fmt.Errorf("encoding debate spec: %w", err)
	}

	debateID := id.New()
	job := queue.DebateJob{DebateID: debateID, Spec: payload, Attempt: 1}
	if traceID := logger.TraceID(ctx); traceID != "" {
		job.TraceID = &traceID
	}

	if _, err := s.producer.Enqueue(ctx, job); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue debate", "error", err, "debate_id", debateID)
		return 0, fmt.Errorf("enqueueing debate: %w", err)
	}

	return debateID, nil
}

// Execute runs one attempt at an enqueued debate, publishing its turns to the
// debate's broadcast stream after clearing whatever an earlier attempt left
// there. A failed attempt publishes neither error nor end: only the caller
// knows whether the debate will be retried, so closing the stream is its job.
func (s *debateService) Execute(ctx context.Context, debateID int64, spec DebateSpec) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DebateID:  &debateID,
		Mode:      "async",
		Component: "arena.service.debate",
	})

	if err := s.broadcaster.Reset(ctx, debateID); err != nil {
		slog.WarnContext(ctx, "failed to reset debate broadcast", "error", err)
	}

	session, machine, _, err := s.prepare(debateID, spec)
	if err != nil {
		return err
	}

	var runErr error
	steps := func(yield func(debate.Snapshot, error) bool) {
		for snap, err := range machine.Steps(ctx, session) {
			if err != nil {
				runErr = err
			}
			if !yield(snap, err) {
				return
			}
		}
	}

	count := 0
	for ev := range debate.Stream(steps) {
		if ev.Type != debate.EventMessage {
			continue
		}
		count++
		s.publish(ctx, debateID, ev)
	}

	if runErr != nil {
		slog.ErrorContext(ctx, "async debate attempt failed", "error", runErr, "turns", count)
		return fmt.Errorf("running debate %d: %w", debateID, runErr)
	}

	s.publish(ctx, debateID, debate.EndEvent())
	slog.InfoContext(ctx, "async debate completed", "turns", count)
	return nil
}

// prepare seats the roster and opens the session. Every failure here happens
// before any phase runs.
func (s *debateService) prepare(debateID int64, spec DebateSpec) (*debate.Session, *debate.Machine, []AgentInfo, error) {
	spec = s.withDefaults(spec)

	session, err := debate.NewSession(debateID, spec.Topic, spec.Rounds)
	if err != nil {
		return nil, nil, nil, err
	}

	roster, agents, err := s.seat(spec)
	if err != nil {
		return nil, nil, nil, err
	}

	machine, err := debate.NewMachine(roster, s.composer)
	if err != nil {
		return nil, nil, nil, err
	}

	return session, machine, agents, nil
}

func (s *debateService) withDefaults(spec DebateSpec) DebateSpec {
	if spec.Rounds == 0 {
		spec.Rounds = s.defaultRounds
	}
	return spec
}

func (s *debateService) seat(spec DebateSpec) (debate.Roster, []AgentInfo, error) {
	cache := s.catalog.NewRequestCache()
	var agents []AgentInfo

	role := func(name string, side debate.Side, a AgentSpec, def string) (debate.Role, error) {
		client, err := cache.Resolve(a.ProfileID)
		if err != nil {
			return debate.Role{}, fmt.Errorf("seating %s: %w", name, err)
		}
		profile, _ := s.catalog.Profile(a.ProfileID)
		agents = append(agents, AgentInfo{
			Name:      name,
			Side:      side,
			ProfileID: a.ProfileID,
			Model:     profile.Model,
		})
		return debate.Role{
			Name:    name,
			Persona: debate.ResolvePersona(a.Persona, a.PersonaPresetID, s.catalog, def),
			LLM:     client,
		}, nil
	}

	team := func(side debate.Side, t TeamSpec) (debate.Team, error) {
		members, err := t.Members(side)
		if err != nil {
			return nil, err
		}
		out := make(debate.Team, 0, len(members))
		for i, m := range members {
			r, err := role(debate.DebaterName(side, i), side, m, "")
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}

	if spec.Judge.empty() {
		return debate.Roster{}, nil, fmt.Errorf("%w: moderator has no model profile", debate.ErrInvalidRoster)
	}
	moderator, err := role(debate.ModeratorName, debate.SideJudge, spec.Judge, s.moderatorPersona())
	if err != nil {
		return debate.Roster{}, nil, err
	}
	pro, err := team(debate.SidePro, spec.Pro)
	if err != nil {
		return debate.Roster{}, nil, err
	}
	con, err := team(debate.SideCon, spec.Con)
	if err != nil {
		return debate.Roster{}, nil, err
	}

	return debate.Roster{Moderator: moderator, Pro: pro, Con: con}, agents, nil
}

func (s *debateService) moderatorPersona() string {
	return debate.ResolvePersona("", NeutralJudgePreset, s.catalog, debate.DefaultModeratorPersona)
}

// broadcast tees events to the debate's spectators. A consumer that stops
// early still leaves spectators with a terminal end event.
func (s *debateService) broadcast(ctx context.Context, debateID int64, events iter.Seq[debate.Event]) iter.Seq[debate.Event] {
	return func(yield func(debate.Event) bool) {
		ended := false
		defer func() {
			if !ended {
				s.publish(ctx, debateID, debate.EndEvent())
			}
		}()

		for ev := range events {
			s.publish(ctx, debateID, ev)
			if ev.Type == debate.EventEnd {
				ended = true
			}
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *debateService) publish(ctx context.Context, debateID int64, ev debate.Event) {
	// spectators still get the tail of a debate whose requester went away
	if err := s.broadcaster.Publish(context.WithoutCancel(ctx), debateID, ev); err != nil {
		slog.WarnContext(ctx, "failed to broadcast debate event", "error", err, "type", ev.Type)
	}
}
