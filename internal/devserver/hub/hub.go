// Package hub is the devserver's websocket broadcast hub: every `vamosc watch` recompile result is
// published once and fanned out to every connected client, instead of each client polling the
// output file. Clients are kept in a mutex-guarded map of websocket connections; Broadcast writes
// to each connection directly from the caller's goroutine, with no separate hub goroutine or
// per-client channel.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vamos-lang/vamosc/internal/vlog"
)

// Diagnostic is one compile result pushed to every connected client.
type Diagnostic struct {
	Source  string `json:"source"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Hub fans Diagnostic values out to every registered client connection.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	log     vlog.Logger
}

// New creates an empty Hub.
func New(log vlog.Logger) *Hub {
	if log == nil {
		log = vlog.Root
	}
	return &Hub{clients: map[*websocket.Conn]bool{}, log: log}
}

// Register adds conn to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

// Unregister removes and closes conn.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Broadcast sends d as JSON to every currently registered client, dropping (and unregistering) any
// connection that errors on write.
func (h *Hub) Broadcast(d Diagnostic) {
	payload, err := json.Marshal(d)
	if err != nil {
		h.log.Error("marshal diagnostic", "err", err)
		return
	}
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn("drop websocket client", "err", err)
			h.Unregister(c)
		}
	}
}

// Len reports the number of currently registered clients, for tests and /healthz-style checks.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
