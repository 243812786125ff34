package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/game"
)

// LogHandler serves /api/log, the battle log of the current session.
type LogHandler struct {
	game Game
}

// NewLogHandler creates a LogHandler for g.
func NewLogHandler(g Game) *LogHandler {
	return &LogHandler{game: g}
}

type logEntry struct {
	Round       int    `json:"round"`
	PlayerMove  string `json:"player_move"`
	AIMove      string `json:"ai_move"`
	Outcome     string `json:"outcome"`
	Substituted bool   `json:"substituted"`
	Text        string `json:"text"`
	At          string `json:"at"`
}

type logResponse struct {
	SessionID string     `json:"session_id"`
	Entries   []logEntry `json:"entries"`
}

func toLogEntry(r game.RoundResult) logEntry {
	return logEntry{
		Round:       r.Round,
		PlayerMove:  r.PlayerMove.String(),
		AIMove:      r.AIMove.String(),
		Outcome:     string(r.Outcome),
		Substituted: r.Substituted(),
		Text:        r.Text(),
		At:          r.At.Format(time.RFC3339),
	}
}

// ServeHTTP handles GET /api/log?limit=n, newest first. Without a limit the
// session's configured log size applies.
func (h *LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := game.DefaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	rounds, err := h.game.Log(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read battle log")
		return
	}

	resp := logResponse{
		SessionID: h.game.Snapshot().Session.ID,
		Entries:   make([]logEntry, 0, len(rounds)),
	}
	for _, r := range rounds {
		resp.Entries = append(resp.Entries, toLogEntry(r))
	}
	writeJSON(w, http.StatusOK, resp)
}
