package draw

import (
	"math/bits"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
)

// EliminationMatch is one pairing of bracket slots; nil is a bye in round 1
// and an unresolved slot in later rounds.
type EliminationMatch struct {
	A *int64 `yaml:"a"`
	B *int64 `yaml:"b"`
}

type EliminationBracket struct {
	Size   int                  `yaml:"size"`
	Slots  []*int64             `yaml:"slots"`
	Rounds [][]EliminationMatch `yaml:"rounds"`
}

type EliminationOptions struct {
	// TargetSize forces the slot count; zero picks the smallest power of two
	// that fits every entrant.
	TargetSize int
	// PreserveOrder skips the shuffle and honours per-entrant seeds.
	PreserveOrder bool
}

// NextPowerOfTwo rounds n up to a power of two, so with input 5 it returns 8.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ResolveBracketSize validates an explicit size or derives one from count.
func ResolveBracketSize(count, target int) (int, error) {
	if target == 0 {
		return NextPowerOfTwo(count), nil
	}
	if !isPowerOfTwo(target) {
		return 0, bracket.NewError(bracket.CodeInvalidBracketSize, "bracket size %d is not a positive power of two", target)
	}
	if target < count {
		return 0, bracket.NewError(bracket.CodeBracketTooSmall, "bracket size %d cannot hold %d entrants", target, count)
	}
	return target, nil
}

// SingleElimination lays the entrants into a bracket of resolved size and
// builds every round. Only round 1 carries entrants.
func SingleElimination(entrants []bracket.Entrant, rng Rng, opts EliminationOptions) (*EliminationBracket, error) {
	size, err := ResolveBracketSize(len(entrants), opts.TargetSize)
	if err != nil {
		return nil, err
	}

	ordered := make([]bracket.Entrant, len(entrants))
	copy(ordered, entrants)
	if !opts.PreserveOrder {
		shuffle(ordered, rng)
	}

	var slots []*int64
	if opts.PreserveOrder && hasPlacementSeeds(ordered) {
		slots = placeSeeded(ordered, size)
	} else {
		slots = make([]*int64, size)
		for i := range ordered {
			id := ordered[i].ID
			slots[i] = &id
		}
	}

	return &EliminationBracket{
		Size:   size,
		Slots:  slots,
		Rounds: buildRounds(slots),
	}, nil
}

func hasPlacementSeeds(entrants []bracket.Entrant) bool {
	for _, e := range entrants {
		if e.Seed != nil {
			return true
		}
	}
	return false
}

// placeSeeded puts each seeded entrant at slot seed-1. The first entrant to
// claim a slot keeps it; everyone else fills the free slots in input order.
func placeSeeded(entrants []bracket.Entrant, size int) []*int64 {
	slots := make([]*int64, size)
	rest := make([]int64, 0, len(entrants))

	for _, e := range entrants {
		if e.Seed != nil && *e.Seed >= 1 && *e.Seed <= size && slots[*e.Seed-1] == nil {
			id := e.ID
			slots[*e.Seed-1] = &id
			continue
		}
		rest = append(rest, e.ID)
	}

	free := 0
	for _, id := range rest {
		for slots[free] != nil {
			free++
		}
		slots[free] = &id
	}
	return slots
}

func buildRounds(slots []*int64) [][]EliminationMatch {
	var rounds [][]EliminationMatch

	first := make([]EliminationMatch, 0, len(slots)/2)
	for i := 0; i+1 < len(slots); i += 2 {
		first = append(first, EliminationMatch{A: slots[i], B: slots[i+1]})
	}
	if len(first) == 0 {
		return rounds
	}
	rounds = append(rounds, first)

	for count := len(first) / 2; count >= 1; count /= 2 {
		rounds = append(rounds, make([]EliminationMatch, count))
	}
	return rounds
}
