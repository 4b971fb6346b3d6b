package debate

// PickRefuter selects who rebuts for round: slot 1 in the first round, slot 2
// in the second, slot 3 from the third on. Teams too short for that slot fall
// back to their last member. team must not be empty.
func PickRefuter(team Team, round int) Role {
	switch {
	case round <= 1 && len(team) >= 2:
		return team[1]
	case round == 2 && len(team) >= 3:
		return team[2]
	case len(team) >= 4:
		return team[3]
	}
	return team[len(team)-1]
}

func opener(team Team) Role {
	return team[0]
}

func closer(team Team) Role {
	if len(team) >= TeamSize {
		return team[TeamSize-1]
	}
	return team[len(team)-1]
}
