// Package app wires the camera, landmark detector, move tracker and match
// together, and fans match events out to storage and cue plugins.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/cue"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// NoCamera as CameraID runs without a capture loop; moves then arrive only
// through ProcessHands.
const NoCamera = -1

// ErrInvalidSettings is returned by ApplySettings for out-of-range values.
var ErrInvalidSettings = errors.New("invalid settings")

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Defaults store.Settings

	CameraID        int
	FPS             int
	Tick            time.Duration
	MotionThreshold float64
	MotionRefresh   int
	PluginDir       string

	// Optional overrides, mostly for tests.
	Camera   capture.Camera
	Detector detector.Detector
	Clock    game.Clock
	Rand     game.RandSource
}

// App is the running game: one camera, one detector, one match.
type App struct {
	config   Config
	camera   capture.Camera
	gate     *capture.Gate
	preview  *capture.Preview
	detector detector.Detector
	tracker  *gesture.Tracker
	match    *game.Match
	plugins  *cue.Manager
	cues     *cue.Runner
	rand     game.RandSource

	mu       sync.RWMutex
	settings store.Settings
	stopCh   chan struct{}
	done     chan struct{}

	detectedMu sync.RWMutex
	onDetected []func(gesture.Move)
}

// New creates an App. Persisted settings, when a store is configured,
// override the defaults.
func New(config Config) (*App, error) {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Rand == nil {
		config.Rand = game.DefaultRand()
	}

	settings := config.Defaults
	if config.Store != nil {
		// rounds from an earlier process belong to a session that no longer exists
		if err := config.Store.BattleLog().Clear(); err != nil {
			return nil, fmt.Errorf("clear battle log: %w", err)
		}
		loaded, err := config.Store.Settings().Load(config.Defaults)
		if err != nil {
			log.Printf("Ignoring stored settings: %v", err)
		} else {
			settings = loaded
		}
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	strategy, err := game.StrategyByName(settings.Opponent, settings.PPerfect, config.Rand)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		gate:     capture.NewGate(config.MotionThreshold, config.MotionRefresh),
		preview:  capture.NewPreview(),
		detector: config.Detector,
		tracker:  gesture.NewTracker(),
		plugins:  cue.NewManager(config.PluginDir),
		rand:     config.Rand,
		settings: settings,
	}

	a.match = game.NewMatch(game.Config{
		MaxRounds:     settings.MaxRounds,
		CountdownFrom: settings.CountdownFrom,
		Tick:          config.Tick,
		Strategy:      strategy,
		Rand:          config.Rand,
		Clock:         config.Clock,
		Moves:         a.tracker,
	})
	a.cues = cue.NewRunner(a.plugins, cue.NewExecutor(cue.DefaultTimeout))

	a.tracker.OnChange(a.detectedChanged)
	a.match.Subscribe(a.record)
	a.match.Subscribe(a.cues.Handle)

	if a.camera == nil && config.CameraID != NoCamera {
		opts := capture.DefaultOptions(config.CameraID)
		opts.FPS = config.FPS
		a.camera = capture.NewWebcam(opts)
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// Start discovers cue plugins, opens the camera and starts the frame loop.
// Without a camera the match is ready at once.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.plugins.Discover(); err != nil {
		log.Printf("Cue plugin discovery failed: %v", err)
	} else {
		log.Printf("Loaded %d cue plugins", len(a.plugins.List()))
	}
	a.cues.Start()

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})

	if a.camera == nil {
		close(a.done)
		a.match.Ready()
		log.Println("Started without camera")
		return nil
	}

	if err := a.camera.Open(); err != nil {
		a.cues.Stop()
		a.stopCh = nil
		a.done = nil
		return fmt.Errorf("start capture: %w", err)
	}

	go a.runPipeline(a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the frame loop, abandons any countdown and releases the camera
// and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.match.Cancel()
	a.cues.Stop()

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
	a.gate.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Subscribe adds a listener for match events.
func (a *App) Subscribe(l game.Listener) {
	a.match.Subscribe(l)
}

// OnDetected registers fn to be called whenever the live move changes.
func (a *App) OnDetected(fn func(gesture.Move)) {
	a.detectedMu.Lock()
	defer a.detectedMu.Unlock()
	a.onDetected = append(a.onDetected, fn)
}

func (a *App) detectedChanged(m gesture.Move) {
	a.detectedMu.RLock()
	fns := append([]func(gesture.Move){}, a.onDetected...)
	a.detectedMu.RUnlock()

	for _, fn := range fns {
		fn(m)
	}
}

// Snapshot returns the current match state.
func (a *App) Snapshot() game.Snapshot {
	return a.match.Snapshot()
}

// RegisterPlayer starts a fresh session for name.
func (a *App) RegisterPlayer(name string) error {
	return a.match.RegisterPlayer(name)
}

// StartRound begins the countdown.
func (a *App) StartRound() error {
	return a.match.StartRound()
}

// Advance moves past a shown result.
func (a *App) Advance() error {
	return a.match.Advance()
}

// Match returns the underlying match.
func (a *App) Match() *game.Match {
	return a.match
}

// Preview returns the live video buffer fed by the frame loop.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// Tracker returns the live move tracker.
func (a *App) Tracker() *gesture.Tracker {
	return a.tracker
}

// Plugins returns the cue plugin manager.
func (a *App) Plugins() *cue.Manager {
	return a.plugins
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Settings returns the game parameters in effect.
func (a *App) Settings() store.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// ApplySettings validates s, reconfigures the match and persists s. It
// fails with game.ErrInvalidCommand while a session is under way.
func (a *App) ApplySettings(s store.Settings) error {
	if err := validateSettings(s); err != nil {
		return err
	}
	strategy, err := game.StrategyByName(s.Opponent, s.PPerfect, a.rand)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.match.Reconfigure(s.MaxRounds, s.CountdownFrom, strategy); err != nil {
		return err
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Save(s); err != nil {
			a.restoreSettings(a.settings)
			return fmt.Errorf("save settings: %w", err)
		}
	}
	a.settings = s

	log.Printf("Settings applied: rounds=%d countdown=%d opponent=%s p=%.2f",
		s.MaxRounds, s.CountdownFrom, s.Opponent, s.PPerfect)
	return nil
}

// restoreSettings puts prev back into the match after a failed save.
// Callers hold a.mu.
func (a *App) restoreSettings(prev store.Settings) {
	strategy, err := game.StrategyByName(prev.Opponent, prev.PPerfect, a.rand)
	if err == nil {
		err = a.match.Reconfigure(prev.MaxRounds, prev.CountdownFrom, strategy)
	}
	if err != nil {
		log.Printf("Failed to restore settings: %v", err)
	}
}

// Log returns up to limit rounds of the current session, newest first.
func (a *App) Log(limit int) ([]game.RoundResult, error) {
	if a.config.Store == nil {
		return nil, nil
	}

	sessionID := a.match.Snapshot().Session.ID
	entries, err := a.config.Store.BattleLog().List(sessionID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]game.RoundResult, 0, len(entries))
	for _, e := range entries {
		r := game.RoundResult{
			SessionID:  e.SessionID,
			Round:      e.Round,
			PlayerMove: gesture.Move(e.PlayerMove),
			AIMove:     gesture.Move(e.AIMove),
			Outcome:    game.Outcome(e.Outcome),
			At:         e.CreatedAt,
		}
		r.Detected = r.PlayerMove
		if e.Substituted {
			r.Detected = gesture.None
		}
		out = append(out, r)
	}
	return out, nil
}

// record logs every event and keeps the stored battle log in step with the
// session.
func (a *App) record(ev game.Event) {
	switch ev.Kind {
	case game.EventState:
		log.Printf("Match state: %s", ev.Snapshot.Tag)

	case game.EventRound:
		r := ev.Round
		if r.Substituted() {
			log.Printf("%s (no gesture seen, move substituted)", r.Text())
		} else {
			log.Println(r.Text())
		}
		if a.config.Store == nil {
			return
		}
		err := a.config.Store.BattleLog().Append(&store.BattleEntry{
			SessionID:   r.SessionID,
			Round:       r.Round,
			PlayerMove:  r.PlayerMove.String(),
			AIMove:      r.AIMove.String(),
			Outcome:     string(r.Outcome),
			Substituted: r.Substituted(),
		})
		if err != nil {
			log.Printf("Failed to store round %d: %v", r.Round, err)
		}

	case game.EventSessionReset:
		log.Printf("New session %s for %q", ev.Snapshot.Session.ID, ev.Snapshot.Session.Player)
		if a.config.Store == nil {
			return
		}
		if err := a.config.Store.BattleLog().Clear(); err != nil {
			log.Printf("Failed to clear battle log: %v", err)
		}
	}
}

func validateSettings(s store.Settings) error {
	switch {
	case s.MaxRounds <= 0:
		return fmt.Errorf("%w: max rounds must be positive, got %d", ErrInvalidSettings, s.MaxRounds)
	case s.CountdownFrom <= 0:
		return fmt.Errorf("%w: countdown must be positive, got %d", ErrInvalidSettings, s.CountdownFrom)
	case s.PPerfect < 0 || s.PPerfect > 1:
		return fmt.Errorf("%w: p_perfect must be within [0,1], got %g", ErrInvalidSettings, s.PPerfect)
	}
	return nil
}
