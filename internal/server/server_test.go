package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/gorilla/websocket"
)

// stubGame answers with a fixed snapshot and counts commands.
type stubGame struct {
	snap      game.Snapshot
	settings  store.Settings
	starts    int
	listeners []game.Listener
	detected  []func(gesture.Move)
}

func newStubGame(tag string) *stubGame {
	return &stubGame{
		snap:     game.Snapshot{State: game.StateIdle, Tag: tag},
		settings: store.Settings{MaxRounds: 3, CountdownFrom: 3, PPerfect: 0.96, Opponent: "counter"},
	}
}

func (g *stubGame) Snapshot() game.Snapshot { return g.snap }

func (g *stubGame) RegisterPlayer(string) error { return nil }

func (g *stubGame) StartRound() error {
	g.starts++
	return nil
}

func (g *stubGame) Advance() error { return game.ErrInvalidCommand }

func (g *stubGame) Settings() store.Settings { return g.settings }

func (g *stubGame) Subscribe(l game.Listener) {
	g.listeners = append(g.listeners, l)
}

func (g *stubGame) OnDetected(fn func(gesture.Move)) {
	g.detected = append(g.detected, fn)
}

func (g *stubGame) ProcessHands([]detector.HandLandmarks) gesture.Move { return gesture.None }

func (g *stubGame) ApplySettings(s store.Settings) error {
	g.settings = s
	return nil
}

func (g *stubGame) Log(int) ([]game.RoundResult, error) { return nil, nil }

func serve(s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{Game: newStubGame("Countdown:2")})

	rec := serve(s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["state"] != "Countdown:2" {
		t.Errorf("health = %v", resp)
	}

	if rec := serve(s, http.MethodPost, "/api/health", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/health status = %d, want 405", rec.Code)
	}
}

func TestServer_Routes(t *testing.T) {
	g := newStubGame("Idle")
	s := New(Config{Game: g})

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/game", "", http.StatusOK},
		{http.MethodPost, "/api/game/start", "", http.StatusOK},
		{http.MethodPost, "/api/game/advance", "", http.StatusConflict},
		{http.MethodGet, "/api/game/start", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/game/forfeit", "", http.StatusNotFound},
		{http.MethodGet, "/api/settings", "", http.StatusOK},
		{http.MethodPut, "/api/settings", `{"max_rounds":5}`, http.StatusOK},
		{http.MethodDelete, "/api/settings", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/log", "", http.StatusOK},
		{http.MethodPost, "/api/log", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/stream", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rec := serve(s, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if g.starts != 1 {
		t.Errorf("starts = %d, want 1", g.starts)
	}
	if g.settings.MaxRounds != 5 || g.settings.Opponent != "counter" {
		t.Errorf("settings = %+v", g.settings)
	}
	if len(g.listeners) != 1 || len(g.detected) != 1 {
		t.Error("the event feed should subscribe to match events and detections")
	}
}

func TestServer_NoGame(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/game", "/api/settings", "/api/log", "/api/events", "/api/stream", "/"} {
		if rec := serve(s, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
	if s.Hub() != nil {
		t.Error("expected no hub without a game")
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	page := "<html><body>Rock, paper, scissors</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{StaticDir: dir, Game: newStubGame("Idle")})

	rec := serve(s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != page {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(s, http.MethodGet, "/missing.js", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /missing.js status = %d, want 404", rec.Code)
	}
	// API routes win over the static tree
	if rec := serve(s, http.MethodGet, "/api/game", ""); rec.Code != http.StatusOK ||
		!strings.Contains(rec.Body.String(), `"tag":"Idle"`) {
		t.Errorf("GET /api/game = %d %s", rec.Code, rec.Body.String())
	}
}

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func() Message) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn, func() Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		return msg
	}
}

func TestHub_InitialStateFollowsEvents(t *testing.T) {
	calls := 0
	h := NewHub(func() game.Snapshot {
		calls++
		return game.Snapshot{State: game.StateLoading, Tag: "Loading"}
	})
	h.Refresh()

	h.Publish(game.Event{Kind: game.EventState, Snapshot: game.Snapshot{State: game.StateCountdown, Tag: "Countdown:2"}})
	h.PublishDetected(gesture.Scissors)

	_, read := dialHub(t, h)
	first := read()
	if first.Type != "state" || first.Snapshot == nil {
		t.Fatalf("first message = %+v", first)
	}
	if first.Snapshot.Tag != "Countdown:2" || first.Snapshot.Detected != gesture.Scissors {
		t.Errorf("first snapshot = %s detected %s, want Countdown:2 detected Scissors",
			first.Snapshot.Tag, first.Snapshot.Detected)
	}
	if calls != 1 {
		t.Errorf("snapshot source called %d times, want 1", calls)
	}
}

func TestHub_ClientReceivesLaterEvents(t *testing.T) {
	h := NewHub(func() game.Snapshot { return game.Snapshot{State: game.StateIdle, Tag: "Idle"} })

	_, read := dialHub(t, h)
	if first := read(); first.Snapshot == nil || first.Snapshot.Tag != "Idle" {
		t.Fatalf("first message = %+v", first)
	}

	h.Publish(game.Event{Kind: game.EventState, Snapshot: game.Snapshot{State: game.StateCountdown, Tag: "Countdown:3"}})
	if msg := read(); msg.Snapshot == nil || msg.Snapshot.Tag != "Countdown:3" {
		t.Errorf("second message = %+v", msg)
	}
	if n := h.Clients(); n != 1 {
		t.Errorf("Clients() = %d, want 1", n)
	}
}
