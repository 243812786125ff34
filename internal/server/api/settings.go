package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	game Game
}

// NewSettingsHandler creates a SettingsHandler for g.
func NewSettingsHandler(g Game) *SettingsHandler {
	return &SettingsHandler{game: g}
}

type settingsBody struct {
	MaxRounds     int     `json:"max_rounds"`
	CountdownFrom int     `json:"countdown_from"`
	PPerfect      float64 `json:"p_perfect"`
	Opponent      string  `json:"opponent"`
}

func toSettingsBody(s store.Settings) settingsBody {
	return settingsBody{
		MaxRounds:     s.MaxRounds,
		CountdownFrom: s.CountdownFrom,
		PPerfect:      s.PPerfect,
		Opponent:      s.Opponent,
	}
}

// ServeHTTP handles GET and PUT. A PUT body may carry any subset of fields;
// the rest keep their current values.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSettingsBody(h.game.Settings()))

	case http.MethodPut:
		body := toSettingsBody(h.game.Settings())
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		s := store.Settings{
			MaxRounds:     body.MaxRounds,
			CountdownFrom: body.CountdownFrom,
			PPerfect:      body.PPerfect,
			Opponent:      body.Opponent,
		}
		if err := h.game.ApplySettings(s); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toSettingsBody(h.game.Settings()))

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
