package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send small control messages.
	maxMessageSize = 512
)

// The zero CheckOrigin rejects cross-origin upgrades.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one open tab of a browser profile.
type Client struct {
	id        string
	profileID string
	hub       *Hub
	conn      *websocket.Conn
	logger    *slog.Logger

	// mu guards send against a close racing a reply from readPump.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// ClientMessage is what a tab may send us.
type ClientMessage struct {
	Type string `json:"type"`
}

func newClient(hub *Hub, conn *websocket.Conn, profileID string, logger *slog.Logger) *Client {
	return &Client{
		id:        xid.New().String(),
		profileID: profileID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 64),
		logger:    logger,
	}
}

// readPump keeps the read deadline moving and answers client pings.
// It owns unregistration: when the peer goes away the hub closes send,
// which in turn stops writePump.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(MessageTypeError, map[string]string{"error": "invalid message format"})
			continue
		}
		switch msg.Type {
		case MessageTypePing:
			c.reply(MessageTypePong, nil)
		default:
			c.logger.Debug("ignoring client message", slog.String("type", msg.Type))
		}
	}
}

// writePump drains send onto the connection and pings the peer.
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
			// One frame per message; browsers parse each frame as JSON.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// enqueue reports false if the client is closed or its buffer is full.
func (c *Client) enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// reply queues a direct answer to this client.
func (c *Client) reply(typ string, data any) {
	b, err := json.Marshal(Message{Type: typ, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	c.enqueue(b)
}

// ServeWs upgrades r and attaches the connection to profileID.
func ServeWs(hub *Hub, profileID string, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(hub, conn, profileID, logger)
	if !hub.Register(c) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
