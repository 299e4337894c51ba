package draw

type RoundRobinMatch struct {
	A int64 `yaml:"a"`
	B int64 `yaml:"b"`
}

// RoundRobinSchedule holds one slice of matches per round.
type RoundRobinSchedule [][]RoundRobinMatch

// RoundRobin builds an all-play-all schedule with the circle method. An odd
// field gets a bye slot; pairs against the bye produce no match.
func RoundRobin(entrants []int64, rng Rng) RoundRobinSchedule {
	if len(entrants) == 0 {
		return nil
	}

	// nil is the bye
	slots := make([]*int64, 0, len(entrants)+1)
	for i := range entrants {
		slots = append(slots, &entrants[i])
	}
	if len(slots)%2 != 0 {
		slots = append(slots, nil)
	}
	n := len(slots)

	rounds := make(RoundRobinSchedule, 0, n-1)
	for round := 0; round < n-1; round++ {
		matches := make([]RoundRobinMatch, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == nil || away == nil {
				continue
			}
			// vary who is listed first
			if rng() > 0.5 {
				home, away = away, home
			}
			matches = append(matches, RoundRobinMatch{A: *home, B: *away})
		}
		rounds = append(rounds, matches)

		// keep slot 0 fixed, rotate the rest one step clockwise
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}

// MatchCount is the number of playable matches in the schedule.
func (s RoundRobinSchedule) MatchCount() int {
	total := 0
	for _, round := range s {
		total += len(round)
	}
	return total
}
