package game

import "math/rand"

// RNG is the random number service consumed by the agent rule. It must be
// deterministic for a fixed seed; *rand.Rand satisfies it.
type RNG interface {
	Float64() float64 // uniform in [0, 1)
	Intn(n int) int   // uniform in [0, n)
}

// NewRNG returns a seeded generator.
func NewRNG(seed int64) RNG {
	return rand.New(rand.NewSource(seed))
}

// chance runs a Bernoulli trial with success probability p.
func chance(rng RNG, p float64) bool {
	return rng.Float64() < p
}
