package debate

// Phase is one step of the debate state machine. Every phase except End
// produces exactly one turn.
type Phase int

const (
	PhaseIntro Phase = iota + 1
	PhaseOpeningPro
	PhaseOpeningCon
	PhaseRefutePro
	PhaseRefuteCon
	PhaseClosingPro
	PhaseClosingCon
	PhaseJudgeSummary
	PhaseEnd
)

// Phases lists every phase in declaration order.
var Phases = []Phase{
	PhaseIntro,
	PhaseOpeningPro,
	PhaseOpeningCon,
	PhaseRefutePro,
	PhaseRefuteCon,
	PhaseClosingPro,
	PhaseClosingCon,
	PhaseJudgeSummary,
	PhaseEnd,
}

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseOpeningPro:
		return "opening_pro"
	case PhaseOpeningCon:
		return "opening_con"
	case PhaseRefutePro:
		return "refute_pro"
	case PhaseRefuteCon:
		return "refute_con"
	case PhaseClosingPro:
		return "closing_pro"
	case PhaseClosingCon:
		return "closing_con"
	case PhaseJudgeSummary:
		return "judge_summary"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ParsePhase is the inverse of String.
func ParsePhase(s string) (Phase, bool) {
	for _, p := range Phases {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// Label is the stage name shown to people watching the debate.
func (p Phase) Label() string {
	switch p {
	case PhaseIntro:
		return "Introduction"
	case PhaseOpeningPro:
		return "Pro opening"
	case PhaseOpeningCon:
		return "Con opening"
	case PhaseRefutePro:
		return "Pro rebuttal"
	case PhaseRefuteCon:
		return "Con rebuttal"
	case PhaseClosingPro:
		return "Pro closing"
	case PhaseClosingCon:
		return "Con closing"
	case PhaseJudgeSummary:
		return "Verdict"
	case PhaseEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Rebuttal reports whether the phase belongs to the repeated rebuttal pair.
func (p Phase) Rebuttal() bool {
	return p == PhaseRefutePro || p == PhaseRefuteCon
}

// Next is the transition function. The only conditional edge follows
// PhaseRefuteCon, which has already advanced s.Round when Next is evaluated.
func Next(p Phase, s *Session) Phase {
	switch p {
	case PhaseIntro:
		return PhaseOpeningPro
	case PhaseOpeningPro:
		return PhaseOpeningCon
	case PhaseOpeningCon:
		return PhaseRefutePro
	case PhaseRefutePro:
		return PhaseRefuteCon
	case PhaseRefuteCon:
		if s.Round <= s.MaxRounds {
			return PhaseRefutePro
		}
		return PhaseClosingPro
	case PhaseClosingPro:
		return PhaseClosingCon
	case PhaseClosingCon:
		return PhaseJudgeSummary
	case PhaseJudgeSummary, PhaseEnd:
		return PhaseEnd
	}
	return PhaseEnd
}
