package gesture

import "sync"

// Tracker holds the most recently classified move. Every observation
// overwrites the previous one; there is no smoothing.
type Tracker struct {
	mu       sync.RWMutex
	current  Move
	onChange func(Move)
}

// NewTracker creates a Tracker that starts at None.
func NewTracker() *Tracker {
	return &Tracker{current: None}
}

// OnChange registers a callback fired when the observed move differs from
// the previous one. The callback runs outside the tracker lock.
func (t *Tracker) OnChange(fn func(Move)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Observe records the latest classifier output.
func (t *Tracker) Observe(m Move) {
	if m == "" {
		m = None
	}

	t.mu.Lock()
	changed := t.current != m
	t.current = m
	callback := t.onChange
	t.mu.Unlock()

	if changed && callback != nil {
		callback(m)
	}
}

// Current returns the last observed move.
func (t *Tracker) Current() Move {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Reset sets the tracker back to None.
func (t *Tracker) Reset() {
	t.Observe(None)
}
