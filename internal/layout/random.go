package layout

import "math/rand/v2"

// Random is the deterministic source used for degenerate-direction fallbacks.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewRandom returns a seeded PCG source. Identical seeds yield identical
// sequences.
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
