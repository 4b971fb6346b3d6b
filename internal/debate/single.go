package debate

import (
	"context"
	"fmt"
	"strings"
)

// IsHumanSpeaker reports whether a history entry's role names the human participant.
func IsHumanSpeaker(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "human", "user":
		return true
	default:
		return false
	}
}

// AgentName picks the display name of an agent in human-vs-agent mode: an
// explicit name first, then the slot name for its side, then "<Side> Debater".
func AgentName(explicit string, side Side, slot *int) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if slot != nil && *slot >= 0 && *slot < TeamSize {
		return DebaterName(side, *slot)
	}
	return side.Marker() + " Debater"
}

// DefaultPersona is the persona an agent gets when the request names none.
func DefaultPersona(side Side, slot *int) string {
	marker := side.Marker()
	if slot != nil {
		switch *slot {
		case 0:
			return fmt.Sprintf("A calm, well-organised %s first speaker who opens the case with a rigorous structure and is good at building the overall framework.", marker)
		case 1:
			return fmt.Sprintf("A sharp %s second speaker with a keen eye for loopholes, chiefly responsible for rebutting the opponent and consolidating the team's case.", marker)
		case 2:
			return fmt.Sprintf("A witty %s third speaker who supports the case with vivid examples and analogies and adds measured rebuttal.", marker)
		case 3:
			return fmt.Sprintf("A composed, commanding %s fourth speaker who sums up the debate, distils the team's strongest points and brings it to a close.", marker)
		}
	}
	if side == SideCon {
		return "A meticulous, quick-witted con debater who is good at spotting the holes in the other side's reasoning."
	}
	return "A resolute pro debater who builds systematic arguments, speaking with force while staying courteous."
}

// SlotTask is the task for a single agent turn. With a slot it follows the
// slot's duty, otherwise the first turn is constructive and later turns rebut.
func SlotTask(name string, slot *int, historyLen int) string {
	if slot != nil {
		switch *slot {
		case 0:
			return fmt.Sprintf(`You are playing %s, your team's first speaker, responsible for the opening case.
In this speech:
1) state your side's position on the motion clearly;
2) present 2 or 3 well-structured core arguments, touching on supporting evidence where useful;
3) you may anticipate objections, but focus on building your side's complete framework rather than rebutting point by point;
4) keep it orderly so your teammates can build on it.`, name)
		case 1:
			return fmt.Sprintf(`You are playing %s, your team's second speaker, responsible for rebuttal and consolidating your case.
In this speech:
1) briefly summarise the key points of the opponent's latest speech;
2) expose their logical gaps, faulty premises or weak evidence point by point;
3) add to or reinforce 1 or 2 key arguments of your side (you may build on the first speaker's framework);
4) be rigorous, sharp in tone but courteous.`, name)
		case 2:
			return fmt.Sprintf(`You are playing %s, your team's third speaker, responsible for illustration and flank support.
In this speech:
1) pick 1 or 2 representative cases, metaphors or analogies that support your core arguments from a fresh angle;
2) you may respond to the opponent, but focus on concrete, vivid examples that make your position easy to grasp and remember;
3) a lighter tone with some humour is welcome, but do not let it take over or drift off topic.`, name)
		case 3:
			return fmt.Sprintf(`You are playing %s, your team's fourth speaker, responsible for the closing statement.
In this speech:
1) distil your side's core arguments (do not repeat details, focus on synthesis and contrast);
2) point out the key problems in the opponent's case and why they fail to overturn your position;
3) give a persuasive overall summary and value judgement, stirring but reasoned;
4) close with a sense of finality so the judge and audience remember your position and strengths.`, name)
		}
	}

	if historyLen == 0 {
		return `This is the first speech of the debate. Set out your side's position and case:
1) state your position on the motion clearly;
2) present 2 or 3 core arguments in a clear order;
3) you may anticipate objections, but focus on developing your own case.`
	}
	return `You are in a one-on-one debate with a human opponent.
In this speech:
1) respond directly to the opponent's most recent speech, briefly restating their points first;
2) expose the gaps, faulty premises or weaknesses in their reasoning;
3) add to or reinforce 1 or 2 key arguments of your side;
4) stay courteous and professional, no personal attacks.`
}

// SpeakOnce produces a single turn for role over an existing history. It keeps
// no round counter and appends nothing to history.
func (c Composer) SpeakOnce(ctx context.Context, role Role, topic, task string, history []Turn) (Turn, error) {
	if role.LLM == nil {
		return Turn{}, fmt.Errorf("%w: %s has no completer", ErrInvalidRoster, role.Name)
	}
	if strings.TrimSpace(topic) == "" {
		return Turn{}, fmt.Errorf("%w: topic is required", ErrInvalidSession)
	}
	return c.Speak(ctx, role, 0, topic, task, NewTranscript(history...).Turns())
}
