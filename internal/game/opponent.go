package game

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultPPerfect is the probability that the counter opponent plays the
// move that beats the player.
const DefaultPPerfect = 0.96

// Opponent names accepted by StrategyByName.
const (
	OpponentCounter = "counter"
	OpponentUniform = "uniform"
)

// Strategy picks the computer's move once the player's move is captured.
type Strategy interface {
	Choose(player gesture.Move) gesture.Move
}

// BiasedCounter plays the perfect counter with probability PPerfect and
// otherwise deliberately plays the move that loses to the player.
type BiasedCounter struct {
	PPerfect float64
	Rand     RandSource
}

// NewBiasedCounter creates a BiasedCounter. pPerfect is clamped to [0,1].
func NewBiasedCounter(pPerfect float64, r RandSource) *BiasedCounter {
	if pPerfect < 0 {
		pPerfect = 0
	}
	if pPerfect > 1 {
		pPerfect = 1
	}
	if r == nil {
		r = DefaultRand()
	}
	return &BiasedCounter{PPerfect: pPerfect, Rand: r}
}

// Choose draws once in [0,1): below PPerfect it returns Beats(player),
// otherwise LosesTo(player). A non-playable move gets a random reply.
func (s *BiasedCounter) Choose(player gesture.Move) gesture.Move {
	if !player.Valid() {
		return RandomMove(s.Rand)
	}
	if s.Rand.Float64() < s.PPerfect {
		return Beats(player)
	}
	return LosesTo(player)
}

// UniformRandom ignores the player's move and picks uniformly.
type UniformRandom struct {
	Rand RandSource
}

// Choose returns a uniformly random move.
func (s *UniformRandom) Choose(gesture.Move) gesture.Move {
	return RandomMove(s.Rand)
}

// StrategyByName builds the named opponent.
func StrategyByName(name string, pPerfect float64, r RandSource) (Strategy, error) {
	if r == nil {
		r = DefaultRand()
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", OpponentCounter:
		return NewBiasedCounter(pPerfect, r), nil
	case OpponentUniform:
		return &UniformRandom{Rand: r}, nil
	}
	return nil, fmt.Errorf("unknown opponent %q", name)
}
