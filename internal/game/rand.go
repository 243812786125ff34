package game

import (
	"math/rand/v2"

	"github.com/ayusman/mudra/internal/gesture"
)

// RandSource is the randomness used for opponent choices and capture
// substitution. *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	// Float64 returns a uniform sample in [0,1).
	Float64() float64
	// IntN returns a uniform integer in [0,n).
	IntN(n int) int
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand returns a source backed by the runtime-seeded global generator.
// It is safe for concurrent use.
func DefaultRand() RandSource {
	return globalRand{}
}

// RandomMove picks Rock, Paper or Scissors uniformly.
func RandomMove(r RandSource) gesture.Move {
	return gesture.Concrete[r.IntN(len(gesture.Concrete))]
}
