// Package ws implements the best-effort live delivery channel: a process-
// local registry of named rooms that connected clients join and the
// application broadcasts into. The registry starts empty on every process
// start and correctness never depends on it; persisted records remain the
// source of truth.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/foodshare/foodshare-api/internal/pkg/geo"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// event is the wire envelope for every server-to-client message.
type event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inbound is the wire form of every client-to-server message.
type inbound struct {
	Action string          `json:"action"`
	UserID string          `json:"userId"`
	Lat    float64         `json:"lat"`
	Lng    float64         `json:"lng"`
	Data   json.RawMessage `json:"data"`
}

type subscriber interface {
	enqueue(msg []byte)
}

// Hub is the room registry. It satisfies the notification service's Pusher
// interface.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[subscriber]struct{})}
}

// Push broadcasts an event to every subscriber of room. A room with no
// subscribers is a no-op, never an error; a subscriber with a full send
// buffer is skipped.
func (h *Hub) Push(room, name string, payload any) {
	msg, err := json.Marshal(event{Event: name, Data: payload})
	if err != nil {
		slog.Warn("ws: could not marshal event", "event", name, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[room] {
		sub.enqueue(msg)
	}
}

func (h *Hub) join(sub subscriber, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[subscriber]struct{})
	}
	h.rooms[room][sub] = struct{}{}
}

func (h *Hub) drop(sub subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, subs := range h.rooms {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.rooms, room)
		}
	}
}

// ServeHTTP upgrades the connection and runs it until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws: upgrade failed", "err", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	go c.writePump()
	c.readPump()
}

// client is one live connection. Writes go through the send channel so the
// connection has a single writer goroutine.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Slow consumer: drop the message rather than block the broadcast.
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Action {
		case "join":
			c.hub.join(c, msg.UserID)
		case "join-location":
			c.hub.join(c, geo.Cell(msg.Lat, msg.Lng))
		case "food-posted":
			// Relay to everyone watching the same location cell.
			c.hub.Push(geo.Cell(msg.Lat, msg.Lng), "new-food-available", msg.Data)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
