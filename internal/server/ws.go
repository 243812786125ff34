package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 2 * time.Second
	clientSend = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is one event pushed to websocket clients.
type Message struct {
	Type              string            `json:"type"`
	Snapshot          *game.Snapshot    `json:"snapshot,omitempty"`
	Round             *game.RoundResult `json:"round,omitempty"`
	Text              string            `json:"text,omitempty"`
	PreviousSessionID string            `json:"previous_session_id,omitempty"`
	Move              gesture.Move      `json:"move,omitempty"`
}

// MessageFromEvent converts a match event to its wire form.
func MessageFromEvent(ev game.Event) Message {
	snap := ev.Snapshot
	msg := Message{
		Type:              string(ev.Kind),
		Snapshot:          &snap,
		Round:             ev.Round,
		PreviousSessionID: ev.PreviousSessionID,
	}
	if ev.Round != nil {
		msg.Text = ev.Round.Text()
	}
	return msg
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts match events to websocket clients. A client that cannot
// keep up is disconnected rather than allowed to stall the match.
//
// The hub keeps the snapshot carried by the latest event. A new client is
// sent that snapshot and joins the broadcast set under the same lock, so
// every later event reaches it and none arrives ahead of its first state.
type Hub struct {
	snapshot func() game.Snapshot
	last     *game.Snapshot
	clients  map[*client]bool
	mu       sync.RWMutex
}

// NewHub creates a Hub. snapshot supplies the state sent to new clients
// until the first event is published.
func NewHub(snapshot func() game.Snapshot) *Hub {
	return &Hub{
		snapshot: snapshot,
		clients:  make(map[*client]bool),
	}
}

// Refresh loads the initial state from the snapshot source unless an event
// has already replaced it.
func (h *Hub) Refresh() {
	h.mu.RLock()
	loaded := h.last != nil
	h.mu.RUnlock()
	if loaded || h.snapshot == nil {
		return
	}
	snap := h.snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		h.last = &snap
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSend)}

	h.Refresh()

	h.mu.Lock()
	if h.last != nil {
		if data, err := json.Marshal(Message{Type: string(game.EventState), Snapshot: h.last}); err == nil {
			c.send <- data
		}
	}
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("websocket write error: %v", err)
			h.remove(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish is a game.Listener that forwards ev to every client.
func (h *Hub) Publish(ev game.Event) {
	snap := ev.Snapshot
	h.broadcast(MessageFromEvent(ev), func() { h.last = &snap })
}

// PublishDetected pushes a change of the live move.
func (h *Hub) PublishDetected(m gesture.Move) {
	h.broadcast(Message{Type: "detected", Move: m}, func() {
		if h.last != nil {
			snap := *h.last
			snap.Detected = m
			h.last = &snap
		}
	})
}

// broadcast sends msg to every client. update runs under the same lock so
// the cached state and the delivered stream never disagree.
func (h *Hub) broadcast(msg Message, update func()) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("websocket encode error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if update != nil {
		update()
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("websocket client too slow, disconnecting")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
