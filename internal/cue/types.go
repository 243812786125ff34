// Package cue discovers and runs external cue plugins. The game emits cues
// (countdown beeps, round outcomes, end of session); plugins turn them into
// sound or any other feedback.
package cue

// Cue names sent to plugins.
const (
	CueCountdown  = "countdown"
	CueWin        = "win"
	CueLose       = "lose"
	CueDraw       = "draw"
	CueSessionEnd = "session_end"
)

// Manifest describes a plugin's metadata and the cues it handles.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Cues        []string `json:"cues"`
}

// Handles reports whether the plugin subscribed to cue.
func (m Manifest) Handles(cue string) bool {
	for _, c := range m.Cues {
		if c == cue || c == "*" {
			return true
		}
	}
	return false
}

// Request is written to the plugin's stdin.
type Request struct {
	Cue         string `json:"cue"`
	Player      string `json:"player,omitempty"`
	Round       int    `json:"round"`
	MaxRounds   int    `json:"max_rounds"`
	Countdown   int    `json:"countdown,omitempty"`
	PlayerMove  string `json:"player_move,omitempty"`
	AIMove      string `json:"ai_move,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
	PlayerScore int    `json:"player_score"`
	AIScore     int    `json:"ai_score"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
