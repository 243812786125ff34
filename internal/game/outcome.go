// Package game implements the rock-paper-scissors rules, the computer
// opponent, the session scoreboard and the timed match state machine.
package game

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrUnresolvable is returned when a round is resolved with a move that is not playable.
var ErrUnresolvable = errors.New("round needs two concrete moves")

// Outcome is the result of one round from the player's point of view.
type Outcome string

const (
	PlayerWins Outcome = "player"
	AIWins     Outcome = "ai"
	Draw       Outcome = "draw"
)

// counters maps each move to the move that beats it.
var counters = map[gesture.Move]gesture.Move{
	gesture.Rock:     gesture.Paper,
	gesture.Paper:    gesture.Scissors,
	gesture.Scissors: gesture.Rock,
}

// Beats returns the move that defeats m, or None if m is not playable.
func Beats(m gesture.Move) gesture.Move {
	if c, ok := counters[m]; ok {
		return c
	}
	return gesture.None
}

// LosesTo returns the move that m defeats, or None if m is not playable.
func LosesTo(m gesture.Move) gesture.Move {
	for loser, winner := range counters {
		if winner == m {
			return loser
		}
	}
	return gesture.None
}

// Resolve decides a round. Identical moves draw; otherwise the player wins
// only with Rock over Scissors, Paper over Rock or Scissors over Paper.
func Resolve(player, ai gesture.Move) (Outcome, error) {
	if !player.Valid() || !ai.Valid() {
		return "", fmt.Errorf("%w: player=%s ai=%s", ErrUnresolvable, player, ai)
	}

	switch {
	case player == ai:
		return Draw, nil
	case Beats(ai) == player:
		return PlayerWins, nil
	default:
		return AIWins, nil
	}
}
