// AngelaMos | 2026
// client.go

package realtime

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/config"
)

// client is a Subscriber backed by one WebSocket connection. readPump and
// writePump each own one direction of the socket.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	cfg  config.RealtimeConfig

	mu     sync.Mutex
	send   chan []byte
	closed bool

	logger *slog.Logger
}

func newClient(
	id string,
	hub *Hub,
	conn *websocket.Conn,
	cfg config.RealtimeConfig,
	logger *slog.Logger,
) *client {
	return &client{
		id:     id,
		hub:    hub,
		conn:   conn,
		cfg:    cfg,
		send:   make(chan []byte, cfg.SendBuffer),
		logger: logger,
	}
}

func (c *client) ID() string {
	return c.id
}

func (c *client) Deliver(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed unexpectedly",
					"subscriber_id", c.id, "error", err)
			}
			return
		}
		c.handleFrame(msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame applies join_order and leave_order. Anything else, and any
// frame whose order id is missing or zero, is ignored.
func (c *client) handleFrame(msg []byte) {
	var frame Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return
	}

	orderID, ok := parseOrderID(frame.Data)
	if !ok {
		return
	}

	switch frame.Event {
	case EventJoinOrder:
		c.hub.Join(c.id, OrderGroup(orderID))
	case EventLeaveOrder:
		c.hub.Leave(c.id, OrderGroup(orderID))
	}
}

// parseOrderID accepts a JSON number or a numeric string.
func parseOrderID(data json.RawMessage) (int64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, false
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		raw = s
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
