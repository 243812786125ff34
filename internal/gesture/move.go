// Package gesture turns hand landmarks into rock-paper-scissors moves.
package gesture

import (
	"fmt"
	"strings"
)

// Move is a symbolic hand gesture.
type Move string

const (
	Rock     Move = "Rock"
	Paper    Move = "Paper"
	Scissors Move = "Scissors"
	// None means no hand was seen or its shape was ambiguous.
	None Move = "None"
)

// Concrete lists the playable moves.
var Concrete = [...]Move{Rock, Paper, Scissors}

// Valid reports whether m is one of the playable moves.
func (m Move) Valid() bool {
	switch m {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

// String returns the move name.
func (m Move) String() string {
	if m == "" {
		return string(None)
	}
	return string(m)
}

// ParseMove parses a move name, case-insensitively.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock":
		return Rock, nil
	case "paper":
		return Paper, nil
	case "scissors":
		return Scissors, nil
	case "none", "":
		return None, nil
	}
	return None, fmt.Errorf("unknown move %q", s)
}
