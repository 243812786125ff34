// Package api provides the HTTP handlers for driving and inspecting a match.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Game is the part of the application the handlers drive.
type Game interface {
	Snapshot() game.Snapshot
	RegisterPlayer(name string) error
	StartRound() error
	Advance() error
	ProcessHands(hands []detector.HandLandmarks) gesture.Move
	Settings() store.Settings
	ApplySettings(s store.Settings) error
	Log(limit int) ([]game.RoundResult, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidPlayer),
		errors.Is(err, app.ErrInvalidSettings),
		errors.Is(err, detector.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidCommand):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
