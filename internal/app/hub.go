package app

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ReelMonitor/internal/util"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const (
	writeWait  = 2 * time.Second
	sendBuffer = 64
)

// FeedMessage is one websocket frame of the live feed.
type FeedMessage struct {
	Kind string `json:"kind"`
	Line string `json:"line"`
}

// client is one websocket connection and the frames queued for it.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts logfile lines to connected websocket clients.
// Broadcast never blocks: a client whose queue is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: map[*client]bool{}}
}

// HandleWS upgrades HTTP to websocket and registers the client for broadcasts.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := h.add(conn, sendBuffer)
	go h.writeLoop(c)
	go func() {
		defer h.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) add(conn *websocket.Conn, buffer int) *client {
	c := &client{conn: conn, send: make(chan []byte, buffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

// writeLoop drains c.send until the hub closes it.
func (h *Hub) writeLoop(c *client) {
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			util.Debug("[hub] drop client %s: %v", c.conn.RemoteAddr(), err)
			h.remove(c)
			return
		}
	}
}

// Broadcast queues a line for all connected clients.
func (h *Hub) Broadcast(kind, line string) {
	b, err := json.Marshal(FeedMessage{Kind: kind, Line: line})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			util.Debug("[hub] drop slow client %s", c.conn.RemoteAddr())
			h.dropLocked(c)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked unregisters c once. Callers hold mu.
func (h *Hub) dropLocked(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if err := c.conn.Close(); err != nil {
		util.Debug("[hub] close websocket: %v", err)
	}
}
