// Package tray provides a system tray menu for Mudra: the score at a glance
// and quick round controls.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/game"
)

// Tray represents the system tray application.
type Tray struct {
	onStart   func()
	onAdvance func()
	onOpen    func()
	onQuit    func()
	last      game.Snapshot
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus  *systray.MenuItem
	menuScore   *systray.MenuItem
	menuStart   *systray.MenuItem
	menuAdvance *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{last: game.Snapshot{State: game.StateLoading, Tag: "Loading"}}
}

// OnStart sets the callback for the Start Round item.
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnAdvance sets the callback for the Next item.
func (t *Tray) OnAdvance(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAdvance = fn
}

// OnOpen sets the callback for the Open Game item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Rock Paper Scissors")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem("Loading", "Match state")
	t.menuStatus.Disable()
	t.menuScore = systray.AddMenuItem("No player", "Score")
	t.menuScore.Disable()
	systray.AddSeparator()

	t.menuStart = systray.AddMenuItem("Start Round", "Start the countdown")
	t.menuAdvance = systray.AddMenuItem("Next", "Continue after a result")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Game...", "Open the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")
	last := t.last
	t.mu.Unlock()

	t.render(last)

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuStart.ClickedCh:
				t.call(func() func() { return t.onStart })
			case <-t.menuAdvance.ClickedCh:
				t.call(func() func() { return t.onAdvance })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call runs the callback chosen by pick outside the lock.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// Last returns the most recent snapshot the tray has seen. Events that arrive
// before the menu exists are kept and shown once it is ready.
func (t *Tray) Last() game.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Handle is a game.Listener that keeps the menu in step with the match.
func (t *Tray) Handle(ev game.Event) {
	t.mu.Lock()
	t.last = ev.Snapshot
	t.mu.Unlock()

	t.render(ev.Snapshot)
}

func (t *Tray) render(snap game.Snapshot) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus == nil {
		return
	}

	systray.SetTitle(Title(snap))
	t.menuStatus.SetTitle(Status(snap))
	t.menuScore.SetTitle(ScoreLine(snap))

	if snap.State == game.StateIdle && snap.Session.Player != "" {
		t.menuStart.Enable()
	} else {
		t.menuStart.Disable()
	}
	if snap.State == game.StateResult {
		t.menuAdvance.Enable()
	} else {
		t.menuAdvance.Disable()
	}
}

// Title is the short tray title: the running score, or the app name.
func Title(snap game.Snapshot) string {
	if snap.Session.Player == "" {
		return "Mudra"
	}
	return fmt.Sprintf("%d : %d", snap.Session.Score.Player, snap.Session.Score.AI)
}

// Status describes the match state for the menu.
func Status(snap game.Snapshot) string {
	switch snap.State {
	case game.StateLoading:
		return "Loading hand tracker..."
	case game.StateCountdown:
		if snap.Countdown > 0 {
			return fmt.Sprintf("Round %d: %d...", snap.Session.Round, snap.Countdown)
		}
		return fmt.Sprintf("Round %d: shoot!", snap.Session.Round)
	case game.StateResult:
		c := snap.Current
		line := fmt.Sprintf("Round %d: %s vs %s", c.Round, c.PlayerMove, c.AIMove)
		if snap.Final {
			line += " (final)"
		}
		return line
	}
	if snap.Session.Player == "" {
		return "Waiting for a challenger"
	}
	return fmt.Sprintf("Round %d of %d: ready", snap.Session.Round, snap.Session.MaxRounds)
}

// ScoreLine is the player's score against the computer.
func ScoreLine(snap game.Snapshot) string {
	if snap.Session.Player == "" {
		return "No player"
	}
	return fmt.Sprintf("%s %d - %d AI", snap.Session.Player, snap.Session.Score.Player, snap.Session.Score.AI)
}
