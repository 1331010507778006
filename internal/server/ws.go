package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local UI only
	},
}

// StateSocket pushes the state projection to WebSocket clients on a
// fixed cadence. Every client receives the same document served at
// /api/v1/state.
type StateSocket struct {
	engine    api.Engine
	telemetry api.Telemetry
	interval  time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewStateSocket creates the broadcaster and starts its ticker goroutine.
func NewStateSocket(engine api.Engine, tel api.Telemetry, interval time.Duration) *StateSocket {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	h := &StateSocket{
		engine:    engine,
		telemetry: tel,
		interval:  interval,
		clients:   make(map[*websocket.Conn]bool),
		stopCh:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP upgrades the connection and holds it until the client hangs up.
func (h *StateSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Reads only serve to detect disconnect; clients never send commands
	// over the socket.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcast pushes the state document to every client on each tick.
func (h *StateSocket) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		n := len(h.clients)
		h.mu.RUnlock()
		if n == 0 {
			continue
		}

		msg, err := json.Marshal(api.BuildState(h.engine, h.telemetry))
		if err != nil {
			log.Printf("server: marshal state: %v", err)
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			// A failed write is followed by a failed read in ServeHTTP,
			// which unregisters the client.
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

// Close stops the broadcast goroutine.
func (h *StateSocket) Close() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}
