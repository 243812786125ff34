package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// Session limits.
const (
	DefaultMaxRounds = 3
	DefaultLogLimit  = 10
	MaxPlayerName    = 32
)

// ErrInvalidPlayer is returned for an empty or oversized player name.
var ErrInvalidPlayer = errors.New("invalid player name")

// Score is the running tally of won rounds.
type Score struct {
	Player int `json:"player"`
	AI     int `json:"ai"`
}

// RoundResult is emitted once per resolved round.
type RoundResult struct {
	SessionID  string       `json:"session_id"`
	Round      int          `json:"round"`
	Detected   gesture.Move `json:"detected"`
	PlayerMove gesture.Move `json:"player_move"`
	AIMove     gesture.Move `json:"ai_move"`
	Outcome    Outcome      `json:"outcome"`
	At         time.Time    `json:"at"`
}

// Substituted reports whether the player's move was filled in randomly
// because no gesture was seen at capture.
func (r RoundResult) Substituted() bool {
	return r.Detected != r.PlayerMove
}

// Text renders the battle log line for the round.
func (r RoundResult) Text() string {
	return fmt.Sprintf("Round %d: %s - P: %s / AI: %s", r.Round, strings.ToUpper(string(r.Outcome)), r.PlayerMove, r.AIMove)
}

// LogEntry is one line of the battle log.
type LogEntry struct {
	Round   int     `json:"round"`
	Outcome Outcome `json:"outcome"`
	Text    string  `json:"text"`
}

// RoundState is the record of the round currently being played.
type RoundState struct {
	Round      int          `json:"round"`
	PlayerMove gesture.Move `json:"player_move"`
	AIMove     gesture.Move `json:"ai_move"`
	Outcome    Outcome      `json:"outcome,omitempty"`
	Resolved   bool         `json:"resolved"`
}

func newRoundState(round int) RoundState {
	return RoundState{Round: round, PlayerMove: gesture.None, AIMove: gesture.None}
}

// Session is one player's run of rounds.
type Session struct {
	ID        string     `json:"id"`
	Player    string     `json:"player"`
	Round     int        `json:"round"`
	MaxRounds int        `json:"max_rounds"`
	Score     Score      `json:"score"`
	Log       []LogEntry `json:"log"`

	logLimit int
}

// NewSession creates an unregistered session.
func NewSession(maxRounds, logLimit int) *Session {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	if logLimit <= 0 {
		logLimit = DefaultLogLimit
	}
	s := &Session{MaxRounds: maxRounds, logLimit: logLimit}
	s.Reset()
	return s
}

// ValidatePlayer trims name and checks it is usable.
func ValidatePlayer(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidPlayer)
	}
	if utf8.RuneCountInString(name) > MaxPlayerName {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrInvalidPlayer, MaxPlayerName)
	}
	return name, nil
}

// Register starts a fresh session for the named player.
func (s *Session) Register(name string) error {
	name, err := ValidatePlayer(name)
	if err != nil {
		return err
	}
	s.Reset()
	s.Player = name
	return nil
}

// Registered reports whether a player owns the session.
func (s *Session) Registered() bool {
	return s.Player != ""
}

// Reset clears player, score, round counter and log together.
func (s *Session) Reset() {
	s.ID = uuid.NewString()
	s.Player = ""
	s.Round = 1
	s.Score = Score{}
	s.Log = nil
}

// Final reports whether the current round is the last configured one.
func (s *Session) Final() bool {
	return s.Round >= s.MaxRounds
}

// NextRound moves to the following round.
func (s *Session) NextRound() error {
	if s.Final() {
		return fmt.Errorf("%w: round %d is the last of %d", ErrInvalidCommand, s.Round, s.MaxRounds)
	}
	s.Round++
	return nil
}

// Record applies a resolved round to the score and log.
func (s *Session) Record(r RoundResult) {
	switch r.Outcome {
	case PlayerWins:
		s.Score.Player++
	case AIWins:
		s.Score.AI++
	}

	entry := LogEntry{Round: r.Round, Outcome: r.Outcome, Text: r.Text()}
	s.Log = append([]LogEntry{entry}, s.Log...)
	if len(s.Log) > s.logLimit {
		s.Log = s.Log[:s.logLimit]
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() Session {
	c := *s
	c.Log = append([]LogEntry(nil), s.Log...)
	return c
}
