// Package network is the thin hosting shell between the simulation engine and
// a rendering frontend. It forwards player intents as engine method calls and
// streams full-state snapshots back out; no game logic lives here.
package network

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/engine"
	"github.com/bagelworks/bageltycoon/server/internal/platform/logger"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"
)

// StateMessage is the envelope pushed to every connected client.
type StateMessage struct {
	Type  string      `json:"type"` // always "state"
	State *game.State `json:"state"`
}

// Hub maintains the set of active clients and broadcasts engine snapshots to
// them. It subscribes to the engine once and fans each snapshot out.
type Hub struct {
	engine     *engine.Engine
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a Hub bound to one engine.
func NewHub(eng *engine.Engine, log *logger.Logger) *Hub {
	return &Hub{
		engine:     eng,
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the Hub's main loop and wires the engine subscription. The
// subscription delivers the initial snapshot immediately, so a client that
// connects before the first tick still renders a full shop.
func (h *Hub) Run(ctx context.Context) {
	unsubscribe := h.engine.Subscribe(func(state *game.State) {
		h.BroadcastState(state)
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastState serializes a snapshot and queues it for every client.
func (h *Hub) BroadcastState(state *game.State) {
	payload, err := json.Marshal(StateMessage{Type: "state", State: state})
	if err != nil {
		h.logger.Error("failed to serialize state for WebSocket broadcast: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// A stalled hub loop must not block the engine's notify path.
		metrics.Get().RecordWSError()
	}
}
