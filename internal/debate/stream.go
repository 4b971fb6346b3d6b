package debate

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Side is the camp a speaker belongs to on the wire.
type Side string

const (
	SidePro   Side = "pro"
	SideCon   Side = "con"
	SideJudge Side = "judge"
)

// Speaker-name markers used for side classification.
const (
	ProMarker = "Pro"
	ConMarker = "Con"
)

func (s Side) Valid() bool {
	switch s {
	case SidePro, SideCon, SideJudge:
		return true
	default:
		return false
	}
}

// Marker is the display prefix of the side's speakers.
func (s Side) Marker() string {
	switch s {
	case SidePro:
		return ProMarker
	case SideCon:
		return ConMarker
	default:
		return ModeratorName
	}
}

// Opposite returns the other debating side. The judge has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case SidePro:
		return SideCon
	case SideCon:
		return SidePro
	default:
		return SideJudge
	}
}

// ClassifySide maps a speaker name to its side by marker. Names carrying
// neither marker belong to the judge.
func ClassifySide(speaker string) Side {
	switch {
	case strings.Contains(speaker, ProMarker):
		return SidePro
	case strings.Contains(speaker, ConMarker):
		return SideCon
	default:
		return SideJudge
	}
}

type EventType string

const (
	EventMessage EventType = "message"
	EventError   EventType = "error"
	EventEnd     EventType = "end"
)

// Event is one line of the debate stream.
type Event struct {
	Type    EventType `json:"type" jsonschema:"required,enum=message,enum=error,enum=end"`
	Role    string    `json:"role,omitempty" jsonschema:"description=Speaker display name (message events)"`
	Content string    `json:"content,omitempty" jsonschema:"description=Turn text (message events)"`
	Side    Side      `json:"side,omitempty" jsonschema:"enum=pro,enum=con,enum=judge"`
	Phase   string    `json:"phase,omitempty" jsonschema:"description=Phase that produced the turn"`
	Round   int       `json:"round,omitempty" jsonschema:"description=Rebuttal round of rebuttal turns"`
	Detail  string    `json:"detail,omitempty" jsonschema:"description=Failure description (error events)"`
}

// MessageEvent converts a turn into its wire event.
func MessageEvent(t Turn) Event {
	ev := Event{
		Type:    EventMessage,
		Role:    t.Speaker,
		Content: t.Content,
		Side:    ClassifySide(t.Speaker),
		Round:   t.Round,
	}
	if t.Phase != 0 {
		ev.Phase = t.Phase.String()
	}
	return ev
}

func ErrorEvent(err error) Event {
	return Event{Type: EventError, Detail: err.Error()}
}

func EndEvent() Event {
	return Event{Type: EventEnd}
}

// Stream turns a stepping debate into wire events: one message per newly
// appended turn in production order, then at most one error, then exactly one
// end. It stops pulling steps as soon as the consumer stops reading.
func Stream(steps iter.Seq2[Snapshot, error]) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		emitted := 0
		var failure error

		for snap, err := range steps {
			if err != nil {
				failure = err
				break
			}
			for _, turn := range snap.Turns[emitted:] {
				if !yield(MessageEvent(turn)) {
					return
				}
			}
			emitted = len(snap.Turns)
		}

		if failure != nil {
			if !yield(ErrorEvent(failure)) {
				return
			}
		}
		yield(EndEvent())
	}
}

// Encoder writes events as newline-delimited JSON.
type Encoder struct {
	w   io.Writer
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{w: w, enc: enc}
}

// Encode writes ev followed by a newline and flushes w when it supports it.
func (e *Encoder) Encode(ev Event) error {
	if err := e.enc.Encode(ev); err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Type, err)
	}
	if f, ok := e.w.(interface{ Flush() }); ok {
		f.Flush()
	}
	return nil
}
