package debate

import (
	"fmt"
	"strings"

	"basegraph.app/arena/common/llm"
)

const (
	// TeamSize is the number of slots on a full team.
	TeamSize = 4

	// MaxRoundsLimit bounds the rebuttal loop.
	MaxRoundsLimit = 10

	// ModeratorName is the display name of the moderator role.
	ModeratorName = "Moderator"
)

var ordinals = [TeamSize]string{"First", "Second", "Third", "Fourth"}

// Role is one speaking identity. LLM is owned by whoever built the role and is
// only read by the debate.
type Role struct {
	Name    string
	Persona string // empty = no persona framing
	LLM     llm.Completer
}

// Team is an ordered list of up to four roles. Slot 0 opens, slots 1 and 2
// rebut, slot 3 closes.
type Team []Role

// Roster seats the moderator and both teams.
type Roster struct {
	Moderator Role
	Pro       Team
	Con       Team
}

// DebaterName is the display name of a team slot, e.g. "Pro Second Debater".
func DebaterName(side Side, slot int) string {
	if slot < 0 || slot >= TeamSize {
		return side.Marker() + " Debater"
	}
	return fmt.Sprintf("%s %s Debater", side.Marker(), ordinals[slot])
}

// Validate checks that the roster can seat a debate.
func (r Roster) Validate() error {
	seen := make(map[string]bool)

	check := func(role Role, where string) error {
		if strings.TrimSpace(role.Name) == "" {
			return fmt.Errorf("%w: %s has no name", ErrInvalidRoster, where)
		}
		if role.LLM == nil {
			return fmt.Errorf("%w: %s (%s) has no completer", ErrInvalidRoster, where, role.Name)
		}
		if seen[role.Name] {
			return fmt.Errorf("%w: duplicate role name %q", ErrInvalidRoster, role.Name)
		}
		seen[role.Name] = true
		return nil
	}

	if err := check(r.Moderator, "moderator"); err != nil {
		return err
	}

	for _, team := range []struct {
		side    Side
		members Team
	}{{SidePro, r.Pro}, {SideCon, r.Con}} {
		if len(team.members) == 0 {
			return fmt.Errorf("%w: %s team is empty", ErrInvalidRoster, team.side)
		}
		if len(team.members) > TeamSize {
			return fmt.Errorf("%w: %s team has %d members, at most %d allowed",
				ErrInvalidRoster, team.side, len(team.members), TeamSize)
		}
		for i, role := range team.members {
			if err := check(role, fmt.Sprintf("%s slot %d", team.side, i)); err != nil {
				return err
			}
		}
	}

	return nil
}
