package debate

import "slices"

// Turn is one produced contribution. Turns are values and are never modified
// after they are appended.
type Turn struct {
	Seq     int    // 1-based position in the transcript
	Speaker string // display name of the role that produced the turn
	Content string
	Phase   Phase // zero for turns supplied as history
	Round   int   // rebuttal round, zero outside rebuttal phases
	Human   bool  // written by a person rather than a completer
}

// Transcript is the append-only record of a debate.
type Transcript struct {
	turns []Turn
}

// NewTranscript seeds a transcript with existing history, renumbering it in order.
func NewTranscript(history ...Turn) *Transcript {
	t := &Transcript{turns: make([]Turn, 0, len(history)+10)}
	for _, turn := range history {
		t.append(turn)
	}
	return t
}

// Turns returns a copy of the turns so far. Callers may modify it freely.
func (t *Transcript) Turns() []Turn {
	return slices.Clone(t.turns)
}

func (t *Transcript) Len() int {
	return len(t.turns)
}

func (t *Transcript) append(turn Turn) Turn {
	turn.Seq = len(t.turns) + 1
	t.turns = append(t.turns, turn)
	return turn
}
