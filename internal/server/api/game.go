package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// GameHandler serves /api/game and its command endpoints.
type GameHandler struct {
	game Game
	mux  *http.ServeMux
}

// NewGameHandler creates a GameHandler for g.
func NewGameHandler(g Game) *GameHandler {
	h := &GameHandler{game: g, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/game", h.state)
	h.mux.HandleFunc("POST /api/game/register", h.register)
	h.mux.HandleFunc("POST /api/game/start", func(w http.ResponseWriter, r *http.Request) {
		h.command(w, h.game.StartRound)
	})
	h.mux.HandleFunc("POST /api/game/advance", func(w http.ResponseWriter, r *http.Request) {
		h.command(w, h.game.Advance)
	})
	h.mux.HandleFunc("POST /api/game/frame", h.frame)
	return h
}

// ServeHTTP dispatches to the game routes. Unknown commands get 404 and a
// known path with the wrong method gets 405.
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// state handles GET /api/game.
func (h *GameHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

type registerRequest struct {
	Name string `json:"name"`
}

// register handles POST /api/game/register.
func (h *GameHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.game.RegisterPlayer(req.Name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

// command runs a parameterless match command and answers with the new state.
func (h *GameHandler) command(w http.ResponseWriter, fn func() error) {
	if err := fn(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

type frameRequest struct {
	Points []detector.Point3D `json:"points"`
}

type frameResponse struct {
	Move gesture.Move `json:"move"`
}

// frame handles POST /api/game/frame: one landmark frame from an external
// source. An empty body or no points means no hand in view. A landmark set
// that cannot describe a hand counts as no hand too, so the live move never
// outlasts a bad frame.
func (h *GameHandler) frame(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.game.ProcessHands(nil)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var hands []detector.HandLandmarks
	if len(req.Points) > 0 {
		hand, err := detector.Landmarks(req.Points)
		switch {
		case errors.Is(err, detector.ErrMalformed):
			log.Printf("Frame dropped as no hand: %v", err)
		case err != nil:
			writeError(w, statusFor(err), err.Error())
			return
		default:
			hands = append(hands, *hand)
		}
	}

	writeJSON(w, http.StatusOK, frameResponse{Move: h.game.ProcessHands(hands)})
}
