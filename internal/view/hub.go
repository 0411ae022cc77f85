package view

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/catan-table/internal/game"
)

// StateFunc builds the public table state served at /api/v1/status.
type StateFunc func() any

// Hub broadcasts game events to websocket spectators and serves the
// read-only HTTP API. It implements game.Observer.
type Hub struct {
	log      *slog.Logger
	stateFn  StateFunc
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]chan []byte
	recent []game.Event
}

// recentCap bounds the in-memory event tail served to new spectators.
const recentCap = 200

// NewHub returns a hub. stateFn may be nil, in which case /api/v1/status
// serves an empty object.
func NewHub(logger *slog.Logger, stateFn StateFunc) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:     logger,
		stateFn: stateFn,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]chan []byte),
	}
}

// Observe fans the event out to every connected spectator. Slow
// spectators get dropped rather than stall the game.
func (h *Hub) Observe(ev game.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.recent = append(h.recent, ev)
	if len(h.recent) > recentCap {
		h.recent = h.recent[len(h.recent)-recentCap:]
	}
	for conn, out := range h.conns {
		select {
		case out <- payload:
		default:
			h.log.Warn("dropping slow spectator", "remote", conn.RemoteAddr())
			close(out)
			delete(h.conns, conn)
		}
	}
	h.mu.Unlock()
}

// Start serves the spectator API in a goroutine.
func (h *Hub) Start(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", h.handleStatus)
	mux.HandleFunc("/api/v1/events", h.handleEvents)
	mux.HandleFunc("/ws", h.handleWS)

	addr := fmt.Sprintf(":%d", port)
	h.log.Info("spectator API starting", "addr", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			h.log.Error("spectator server error", "error", err)
		}
	}()
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	if h.stateFn == nil {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, h.stateFn())
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	events := make([]game.Event, len(h.recent))
	copy(events, h.recent)
	h.mu.Unlock()
	writeJSON(w, events)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	out := make(chan []byte, 64)
	h.mu.Lock()
	h.conns[conn] = out
	h.mu.Unlock()

	h.log.Info("spectator connected", "remote", conn.RemoteAddr())

	go func() {
		defer conn.Close()
		for payload := range out {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.detach(conn)
				return
			}
		}
	}()

	// Reader loop only services control frames and detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.detach(conn)
				return
			}
		}
	}()
}

func (h *Hub) detach(conn *websocket.Conn) {
	h.mu.Lock()
	if out, ok := h.conns[conn]; ok {
		close(out)
		delete(h.conns, conn)
	}
	h.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
