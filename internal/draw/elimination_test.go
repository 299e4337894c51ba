package draw

import (
	"fmt"
	"math/bits"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	testCases := []struct {
		input    int
		expected int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {8, 8}, {9, 16}, {17, 32},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d", tc.input), func(t *testing.T) {
			assert.Equal(t, tc.expected, NextPowerOfTwo(tc.input))
		})
	}
}

func TestSingleEliminationSizing(t *testing.T) {
	for n := 1; n <= 17; n++ {
		t.Run(fmt.Sprintf("%d entrants", n), func(t *testing.T) {
			drawn, err := SingleElimination(bracket.EntrantsFromIDs(entrantRange(n)), NewRng("size"), EliminationOptions{})
			require.NoError(t, err)

			size := NextPowerOfTwo(n)
			assert.Equal(t, size, drawn.Size)
			assert.Len(t, drawn.Slots, size)
			assert.Len(t, drawn.Rounds, bits.Len(uint(size))-1)

			for r, round := range drawn.Rounds {
				assert.Len(t, round, size>>(r+1))
				if r > 0 {
					for _, m := range round {
						assert.Nil(t, m.A)
						assert.Nil(t, m.B)
					}
				}
			}

			var placed []int64
			for _, slot := range drawn.Slots {
				if slot != nil {
					placed = append(placed, *slot)
				}
			}
			assert.ElementsMatch(t, entrantRange(n), placed)
		})
	}
}

func TestSingleEliminationDeterministic(t *testing.T) {
	entrants := bracket.EntrantsFromIDs(entrantRange(13))

	first, err := SingleElimination(entrants, NewRng("repeat"), EliminationOptions{})
	require.NoError(t, err)
	second, err := SingleElimination(entrants, NewRng("repeat"), EliminationOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSingleEliminationDoesNotMutateInput(t *testing.T) {
	entrants := bracket.EntrantsFromIDs([]int64{1, 2, 3, 4, 5})
	_, err := SingleElimination(entrants, NewRng("mutate"), EliminationOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, bracket.EntrantIDs(entrants))
}

func TestResolveBracketSize(t *testing.T) {
	testCases := []struct {
		name     string
		count    int
		target   int
		expected int
		err      error
	}{
		{name: "derived", count: 5, target: 0, expected: 8},
		{name: "explicit fits", count: 5, target: 16, expected: 16},
		{name: "explicit exact", count: 4, target: 4, expected: 4},
		{name: "not a power of two", count: 3, target: 6, err: bracket.ErrInvalidBracketSize},
		{name: "negative", count: 3, target: -4, err: bracket.ErrInvalidBracketSize},
		{name: "too small", count: 5, target: 4, err: bracket.ErrBracketTooSmall},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := ResolveBracketSize(tc.count, tc.target)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, size)
		})
	}
}

func slotIDs(slots []*int64) []any {
	out := make([]any, len(slots))
	for i, s := range slots {
		if s == nil {
			out[i] = nil
		} else {
			out[i] = *s
		}
	}
	return out
}

func TestManualSeedPlacement(t *testing.T) {
	testCases := []struct {
		name     string
		entrants []bracket.Entrant
		size     int
		expected []any
	}{
		{
			name: "seeded entrants land on their slots",
			entrants: []bracket.Entrant{
				{ID: 5, Seed: utils.Ptr(1)},
				{ID: 7, Seed: utils.Ptr(4)},
			},
			size:     4,
			expected: []any{int64(5), nil, nil, int64(7)},
		},
		{
			name: "first writer wins a contested seed",
			entrants: []bracket.Entrant{
				{ID: 1, Seed: utils.Ptr(1)},
				{ID: 2, Seed: utils.Ptr(1)},
				{ID: 3},
			},
			size:     4,
			expected: []any{int64(1), int64(2), int64(3), nil},
		},
		{
			name: "out of range seeds are treated as unseeded",
			entrants: []bracket.Entrant{
				{ID: 9, Seed: utils.Ptr(9)},
				{ID: 8, Seed: utils.Ptr(2)},
			},
			size:     4,
			expected: []any{int64(9), int64(8), nil, nil},
		},
		{
			name: "unseeded entrants keep their relative order",
			entrants: []bracket.Entrant{
				{ID: 11},
				{ID: 12, Seed: utils.Ptr(3)},
				{ID: 13},
				{ID: 14},
			},
			size:     8,
			expected: []any{int64(11), int64(13), int64(12), int64(14), nil, nil, nil, nil},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			drawn, err := SingleElimination(tc.entrants, NewRng("ignored"), EliminationOptions{TargetSize: tc.size, PreserveOrder: true})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, slotIDs(drawn.Slots))
		})
	}
}

func TestPreserveOrderWithoutSeeds(t *testing.T) {
	drawn, err := SingleElimination(bracket.EntrantsFromIDs([]int64{3, 1, 2}), NewRng("x"), EliminationOptions{PreserveOrder: true})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(3), int64(1), int64(2), nil}, slotIDs(drawn.Slots))
	require.Len(t, drawn.Rounds, 2)
	assert.Equal(t, int64(3), *drawn.Rounds[0][0].A)
	assert.Equal(t, int64(1), *drawn.Rounds[0][0].B)
	assert.Equal(t, int64(2), *drawn.Rounds[0][1].A)
	assert.Nil(t, drawn.Rounds[0][1].B)
}
