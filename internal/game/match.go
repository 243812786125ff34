package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Match timing defaults.
const (
	DefaultCountdownFrom = 3
	DefaultTick          = time.Second
)

// ErrInvalidCommand is returned when a command does not fit the current state.
// The match is left untouched.
var ErrInvalidCommand = errors.New("invalid command for current state")

// State is the coarse phase of the match.
type State string

const (
	StateLoading   State = "loading"
	StateIdle      State = "idle"
	StateCountdown State = "countdown"
	StateResult    State = "result"
)

// MoveSource supplies the live observed move at capture time.
type MoveSource interface {
	Current() gesture.Move
}

// Snapshot is a copy of the match at one instant.
type Snapshot struct {
	State     State        `json:"state"`
	Tag       string       `json:"tag"`
	Countdown int          `json:"countdown"`
	Detected  gesture.Move `json:"detected"`
	Current   RoundState   `json:"current"`
	Session   Session      `json:"session"`
	Final     bool         `json:"final"`
}

func stateTag(state State, countdown int) string {
	switch state {
	case StateLoading:
		return "Loading"
	case StateIdle:
		return "Idle"
	case StateCountdown:
		return fmt.Sprintf("Countdown:%d", countdown)
	case StateResult:
		return "Result"
	}
	return string(state)
}

// EventKind distinguishes match notifications.
type EventKind string

const (
	// EventState is sent on every state or countdown change.
	EventState EventKind = "state"
	// EventRound carries a resolved round.
	EventRound EventKind = "round"
	// EventSessionReset is sent when all session data has been cleared.
	EventSessionReset EventKind = "session_reset"
)

// Event is delivered to listeners after each transition.
type Event struct {
	Kind     EventKind    `json:"type"`
	Snapshot Snapshot     `json:"snapshot"`
	Round    *RoundResult `json:"round,omitempty"`
	// PreviousSessionID is set on EventSessionReset.
	PreviousSessionID string `json:"previous_session_id,omitempty"`
}

// Listener receives match events. Listeners run synchronously and in order;
// they must not issue match commands from inside the callback.
type Listener func(Event)

// Config holds match parameters. Zero values fall back to defaults.
type Config struct {
	MaxRounds     int
	CountdownFrom int
	Tick          time.Duration
	LogLimit      int
	Strategy      Strategy
	Rand          RandSource
	Clock         Clock
	Moves         MoveSource
}

func (c Config) withDefaults() Config {
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.CountdownFrom <= 0 {
		c.CountdownFrom = DefaultCountdownFrom
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	if c.LogLimit <= 0 {
		c.LogLimit = DefaultLogLimit
	}
	if c.Rand == nil {
		c.Rand = DefaultRand()
	}
	if c.Strategy == nil {
		c.Strategy = NewBiasedCounter(DefaultPPerfect, c.Rand)
	}
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	return c
}

// Match is the round state machine. All mutation happens under one mutex;
// the countdown is a chain of one-shot timers tagged with a generation so a
// superseded chain can never resolve a round.
type Match struct {
	mu         sync.Mutex
	emitMu     sync.Mutex
	cfg        Config
	state      State
	countdown  int
	session    *Session
	round      RoundState
	timer      Timer
	generation uint64
	listeners  []Listener
}

// NewMatch creates a match in the Loading state.
func NewMatch(cfg Config) *Match {
	cfg = cfg.withDefaults()
	return &Match{
		cfg:     cfg,
		state:   StateLoading,
		session: NewSession(cfg.MaxRounds, cfg.LogLimit),
		round:   newRoundState(1),
	}
}

// Subscribe registers a listener for all future events.
func (m *Match) Subscribe(l Listener) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Ready marks the landmark source as available, moving Loading to Idle.
func (m *Match) Ready() {
	m.mu.Lock()
	if m.state != StateLoading {
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	m.commit(m.stateEvent())
}

// RegisterPlayer starts a new session for name. Any pending countdown is
// abandoned and all counters and the log are cleared.
func (m *Match) RegisterPlayer(name string) error {
	name, err := ValidatePlayer(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.stopTimer()
	previous := m.session.ID
	if err := m.session.Register(name); err != nil {
		m.mu.Unlock()
		return err
	}
	m.round = newRoundState(m.session.Round)
	m.countdown = 0
	if m.state != StateLoading {
		m.state = StateIdle
	}
	m.commit(m.resetEvent(previous), m.stateEvent())
	return nil
}

// StartRound begins the countdown for the current round. It requires Idle
// and a registered player.
func (m *Match) StartRound() error {
	m.mu.Lock()
	if m.state != StateIdle {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot start a round while %s", ErrInvalidCommand, state)
	}
	if !m.session.Registered() {
		m.mu.Unlock()
		return fmt.Errorf("%w: no player registered", ErrInvalidCommand)
	}

	m.beginCountdown()
	m.commit(m.stateEvent())
	return nil
}

// Advance moves on from a result: to the next round's countdown, or, after
// the final round, to a cleared session waiting for the next challenger.
func (m *Match) Advance() error {
	m.mu.Lock()
	if m.state != StateResult {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: nothing to advance while %s", ErrInvalidCommand, state)
	}

	if m.session.Final() {
		previous := m.session.ID
		m.session.Reset()
		m.round = newRoundState(m.session.Round)
		m.state = StateIdle
		m.countdown = 0
		m.commit(m.resetEvent(previous), m.stateEvent())
		return nil
	}

	if err := m.session.NextRound(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.beginCountdown()
	m.commit(m.stateEvent())
	return nil
}

// Cancel abandons any running countdown and returns to Idle. Score and
// round counter are kept.
func (m *Match) Cancel() {
	m.mu.Lock()
	m.stopTimer()
	if m.state != StateCountdown {
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	m.countdown = 0
	m.round = newRoundState(m.session.Round)
	m.commit(m.stateEvent())
}

// Reconfigure replaces the session length, countdown start and opponent.
// It is only allowed while no session is in progress. Listeners receive a
// state event carrying the new session length.
func (m *Match) Reconfigure(maxRounds, countdownFrom int, strategy Strategy) error {
	m.mu.Lock()

	if m.state == StateCountdown || m.state == StateResult {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot reconfigure while %s", ErrInvalidCommand, state)
	}
	if m.session.Round > 1 {
		m.mu.Unlock()
		return fmt.Errorf("%w: session already under way", ErrInvalidCommand)
	}

	if maxRounds > 0 {
		m.cfg.MaxRounds = maxRounds
		m.session.MaxRounds = maxRounds
	}
	if countdownFrom > 0 {
		m.cfg.CountdownFrom = countdownFrom
	}
	if strategy != nil {
		m.cfg.Strategy = strategy
	}
	m.commit(m.stateEvent())
	return nil
}

// Snapshot returns a copy of the current match state.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// beginCountdown resets the round record and starts a fresh timer chain.
// Callers hold m.mu.
func (m *Match) beginCountdown() {
	m.stopTimer()
	m.round = newRoundState(m.session.Round)
	m.state = StateCountdown
	m.countdown = m.cfg.CountdownFrom
	m.schedule()
}

// stopTimer cancels the pending tick and invalidates the current chain.
func (m *Match) stopTimer() {
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Match) schedule() {
	gen := m.generation
	m.timer = m.cfg.Clock.AfterFunc(m.cfg.Tick, func() { m.tick(gen) })
}

// tick advances the countdown by one. At zero the move is captured and the
// round is resolved in the same step.
func (m *Match) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state != StateCountdown {
		m.mu.Unlock()
		return
	}

	m.timer = nil
	m.countdown--
	if m.countdown > 0 {
		m.schedule()
		m.commit(m.stateEvent())
		return
	}

	capture := m.stateEvent()
	result := m.resolve()
	m.state = StateResult
	m.commit(capture, m.roundEvent(result), m.stateEvent())
}

// resolve captures the player's move, asks the opponent, scores the round
// and records it.
func (m *Match) resolve() RoundResult {
	detected := gesture.None
	if m.cfg.Moves != nil {
		detected = m.cfg.Moves.Current()
	}

	player := detected
	if !player.Valid() {
		detected = gesture.None
		player = RandomMove(m.cfg.Rand)
	}

	ai := m.cfg.Strategy.Choose(player)
	outcome, err := Resolve(player, ai)
	if err != nil {
		ai = RandomMove(m.cfg.Rand)
		outcome, _ = Resolve(player, ai)
	}

	result := RoundResult{
		SessionID:  m.session.ID,
		Round:      m.session.Round,
		Detected:   detected,
		PlayerMove: player,
		AIMove:     ai,
		Outcome:    outcome,
		At:         time.Now(),
	}

	m.round = RoundState{
		Round:      result.Round,
		PlayerMove: player,
		AIMove:     ai,
		Outcome:    outcome,
		Resolved:   true,
	}
	m.session.Record(result)
	return result
}

func (m *Match) snapshot() Snapshot {
	detected := gesture.None
	if m.cfg.Moves != nil {
		detected = m.cfg.Moves.Current()
	}
	return Snapshot{
		State:     m.state,
		Tag:       stateTag(m.state, m.countdown),
		Countdown: m.countdown,
		Detected:  detected,
		Current:   m.round,
		Session:   m.session.Clone(),
		Final:     m.session.Final(),
	}
}

func (m *Match) stateEvent() Event {
	return Event{Kind: EventState, Snapshot: m.snapshot()}
}

func (m *Match) roundEvent(r RoundResult) Event {
	return Event{Kind: EventRound, Snapshot: m.snapshot(), Round: &r}
}

func (m *Match) resetEvent(previous string) Event {
	return Event{Kind: EventSessionReset, Snapshot: m.snapshot(), PreviousSessionID: previous}
}

// commit releases m.mu and delivers events in mutation order. It must be
// called with m.mu held.
func (m *Match) commit(events ...Event) {
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()

	for _, ev := range events {
		for _, l := range m.listeners {
			l(ev)
		}
	}
}
