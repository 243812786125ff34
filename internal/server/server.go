// Package server provides the HTTP server: the game API, the live event
// feed, the camera preview and the static web UI.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server/api"
)

// Game is the application surface the server exposes.
type Game interface {
	api.Game
	Subscribe(l game.Listener)
	OnDetected(fn func(gesture.Move))
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Game      Game
	Preview   *capture.Preview
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *Hub
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server. Routes carry their
// method, so the mux answers 405 for a known path with the wrong method.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.config.Game != nil {
		gameHandler := api.NewGameHandler(s.config.Game)
		s.mux.Handle("/api/game", gameHandler)
		s.mux.Handle("/api/game/", gameHandler)

		settingsHandler := api.NewSettingsHandler(s.config.Game)
		s.mux.Handle("GET /api/settings", settingsHandler)
		s.mux.Handle("PUT /api/settings", settingsHandler)
		s.mux.Handle("GET /api/log", api.NewLogHandler(s.config.Game))

		s.hub = NewHub(s.config.Game.Snapshot)
		s.config.Game.Subscribe(s.hub.Publish)
		s.config.Game.OnDetected(s.hub.PublishDetected)
		s.hub.Refresh()
		s.mux.Handle("GET /api/events", s.hub)
	}

	if s.config.Preview != nil {
		s.mux.Handle("GET /api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the event feed, or nil when no game is configured.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Game != nil {
		response["state"] = s.config.Game.Snapshot().Tag
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
