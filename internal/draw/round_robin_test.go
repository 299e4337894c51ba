package draw

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entrantRange(n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, int64(i*10))
	}
	return ids
}

func TestRoundRobinCompleteness(t *testing.T) {
	for n := 2; n <= 11; n++ {
		t.Run(fmt.Sprintf("%d entrants", n), func(t *testing.T) {
			ids := entrantRange(n)
			schedule := RoundRobin(ids, NewRng("rr"))

			expectedRounds := n - 1
			if n%2 != 0 {
				expectedRounds = n
			}
			assert.Len(t, schedule, expectedRounds)
			assert.Equal(t, n*(n-1)/2, schedule.MatchCount())

			seen := make(map[[2]int64]int)
			minPerRound, maxPerRound := n, 0
			for _, round := range schedule {
				playing := make(map[int64]bool)
				for _, m := range round {
					require.NotEqual(t, m.A, m.B)
					assert.False(t, playing[m.A], "entrant %d plays twice in a round", m.A)
					assert.False(t, playing[m.B], "entrant %d plays twice in a round", m.B)
					playing[m.A], playing[m.B] = true, true

					key := [2]int64{min(m.A, m.B), max(m.A, m.B)}
					seen[key]++
				}
				minPerRound = min(minPerRound, len(round))
				maxPerRound = max(maxPerRound, len(round))
			}

			assert.Len(t, seen, n*(n-1)/2)
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %v met %d times", pair, count)
			}
			assert.LessOrEqual(t, maxPerRound-minPerRound, 1)
		})
	}
}

func TestRoundRobinDeterministic(t *testing.T) {
	ids := entrantRange(7)

	assert.Equal(t, RoundRobin(ids, NewRng("same")), RoundRobin(ids, NewRng("same")))
}

func TestRoundRobinEdgeCases(t *testing.T) {
	assert.Nil(t, RoundRobin(nil, NewRng("x")))

	single := RoundRobin([]int64{42}, NewRng("x"))
	require.Len(t, single, 1)
	assert.Empty(t, single[0])
	assert.Equal(t, 0, single.MatchCount())
}
