package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bagelworks/bageltycoon/server/internal/engine"
	"github.com/bagelworks/bageltycoon/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PlayerAction is an incoming intent from the frontend. Every action maps to
// one engine mutator; the engine does all validation.
type PlayerAction struct {
	Type      string `json:"type"`                 // "unlock_station", "take_order", ...
	StationID string `json:"station_id,omitempty"` // for station-scoped actions
	Kind      string `json:"kind,omitempty"`       // upgrade track: equipment|quality|storage
}

// ActionResult reports a mutator outcome back to the requesting client.
type ActionResult struct {
	Type   string `json:"type"` // always "result"
	Action string `json:"action"`
	OK     bool   `json:"ok"`
}

// Client represents one active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades an HTTP request and attaches the connection to the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 64)}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}

// readPump pumps intents from the websocket connection into the engine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket read error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("failed to parse PlayerAction: %v", err)
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	eng := c.hub.engine
	ok := false

	switch action.Type {
	case "unlock_station":
		ok = eng.UnlockStation(action.StationID)
	case "upgrade_station":
		kind, valid := engine.ParseUpgradeKind(action.Kind)
		if !valid {
			c.hub.logger.Warn("unknown upgrade kind %q", action.Kind)
			break
		}
		ok = eng.UpgradeStation(action.StationID, kind)
	case "hire_manager":
		ok = eng.HireManager(action.StationID)
	case "add_ingredient":
		ok = eng.AddIngredient(action.StationID)
	case "take_order":
		ok = eng.TakeOrder()
	case "automate_register":
		ok = eng.AutomateRegister()
	case "add_second_register":
		ok = eng.AddSecondRegister()
	case "enable_spawning":
		eng.EnableSpawning()
		ok = true
	case "prestige":
		ok = eng.Prestige()
	default:
		c.hub.logger.Warn("unknown PlayerAction type: %q", action.Type)
		return
	}

	if payload, err := json.Marshal(ActionResult{Type: "result", Action: action.Type, OK: ok}); err == nil {
		select {
		case c.send <- payload:
			metrics.Get().RecordWSMessage(false)
		default:
		}
	}
}

// writePump pumps queued messages out to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				metrics.Get().RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
