package cue

import (
	"context"
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/game"
)

const queueSize = 32

// PluginExecutor runs one plugin request.
type PluginExecutor interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Runner turns match events into cue requests and runs the subscribed
// plugins on a background worker. Failures are logged and dropped so a
// broken plugin never stalls the game.
type Runner struct {
	manager  *Manager
	executor PluginExecutor

	queue  chan *Request
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewRunner creates a Runner. Call Start before handling events.
func NewRunner(manager *Manager, executor PluginExecutor) *Runner {
	return &Runner{
		manager:  manager,
		executor: executor,
		queue:    make(chan *Request, queueSize),
	}
}

// Start launches the worker.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.running = true
	r.wg.Add(1)
	go r.loop()
}

// Stop cancels in-flight plugin runs and waits for the worker to exit.
// Queued cues are discarded.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
}

// Handle is a game.Listener. It never blocks: cues are dropped when the
// queue is full or the runner is stopped.
func (r *Runner) Handle(ev game.Event) {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return
	}

	for _, req := range Requests(ev) {
		select {
		case r.queue <- req:
		default:
			log.Printf("cue: queue full, dropping %s", req.Cue)
		}
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case req := <-r.queue:
			r.run(req)
		}
	}
}

func (r *Runner) run(req *Request) {
	for _, p := range r.manager.For(req.Cue) {
		resp, err := r.executor.Execute(r.ctx, p, req)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			log.Printf("cue: %s failed on %s: %v", p.Manifest.Name, req.Cue, err)
			continue
		}
		if !resp.Success {
			log.Printf("cue: %s reported error on %s: %s", p.Manifest.Name, req.Cue, resp.Error)
		}
	}
}

// Requests maps a match event to the cues it triggers. Countdown ticks above
// zero beep; a resolved round sounds its outcome from the player's side, and
// the last round of a session also ends it.
func Requests(ev game.Event) []*Request {
	snap := ev.Snapshot
	base := Request{
		Player:      snap.Session.Player,
		Round:       snap.Session.Round,
		MaxRounds:   snap.Session.MaxRounds,
		PlayerScore: snap.Session.Score.Player,
		AIScore:     snap.Session.Score.AI,
	}

	switch ev.Kind {
	case game.EventState:
		if snap.State != game.StateCountdown || snap.Countdown <= 0 {
			return nil
		}
		req := base
		req.Cue = CueCountdown
		req.Countdown = snap.Countdown
		return []*Request{&req}

	case game.EventRound:
		if ev.Round == nil {
			return nil
		}
		req := base
		req.Round = ev.Round.Round
		req.PlayerMove = ev.Round.PlayerMove.String()
		req.AIMove = ev.Round.AIMove.String()
		req.Outcome = string(ev.Round.Outcome)
		switch ev.Round.Outcome {
		case game.PlayerWins:
			req.Cue = CueWin
		case game.AIWins:
			req.Cue = CueLose
		default:
			req.Cue = CueDraw
		}
		out := []*Request{&req}
		if snap.Final {
			end := req
			end.Cue = CueSessionEnd
			out = append(out, &end)
		}
		return out
	}

	return nil
}
