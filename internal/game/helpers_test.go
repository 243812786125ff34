package game

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// scriptedRand replays fixed samples, then repeats the last one.
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return v
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return v % n
}

// manualClock only fires timers when told to.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// Fire runs every timer that is pending right now and returns how many ran.
// Timers scheduled by those callbacks wait for the next call.
func (c *manualClock) Fire() int {
	return c.fire(false)
}

// FireStale also runs stopped timers, as if Stop lost a race with expiry.
func (c *manualClock) FireStale() int {
	return c.fire(true)
}

func (c *manualClock) fire(includeStopped bool) int {
	c.mu.Lock()
	pending := c.timers
	c.timers = nil
	c.mu.Unlock()

	n := 0
	for _, t := range pending {
		t.mu.Lock()
		run := !t.fired && (includeStopped || !t.stopped)
		if run {
			t.fired = true
		}
		t.mu.Unlock()
		if run {
			t.f()
			n++
		}
	}
	return n
}

// fixedMoves is a MoveSource that always reports the same move.
type fixedMoves struct {
	mu   sync.Mutex
	move gesture.Move
}

func (f *fixedMoves) Current() gesture.Move {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.move
}

func (f *fixedMoves) Set(m gesture.Move) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.move = m
}

// recorder collects events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tags []string
	for _, ev := range r.events {
		if ev.Kind == EventState {
			tags = append(tags, ev.Snapshot.Tag)
		}
	}
	return tags
}

func (r *recorder) rounds() []RoundResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RoundResult
	for _, ev := range r.events {
		if ev.Kind == EventRound {
			out = append(out, *ev.Round)
		}
	}
	return out
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
