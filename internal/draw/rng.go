// Package draw computes tournament structures from an entrant list. Nothing
// here touches the database; the same input and seed always give the same plan.
package draw

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Rng yields pseudo-random floats in [0,1).
type Rng func() float64

const streamSalt = 0x9e3779b97f4a7c15

// NewRng turns a string seed into a reproducible float sequence.
func NewRng(seed string) Rng {
	h := xxhash.Sum64String(seed)
	return rand.New(rand.NewPCG(h, h^streamSalt)).Float64
}

// FallbackSeed is the seed recorded when the caller did not pick one.
func FallbackSeed(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// shuffle is a Fisher-Yates pass driven by rng.
func shuffle[T any](items []T, rng Rng) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}
