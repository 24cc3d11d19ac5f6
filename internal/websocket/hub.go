// Package websocket pushes new notifications to the browser tabs of the
// profile they belong to.
//
// One Hub goroutine owns the connection registry. Each Client runs a read
// pump (keepalive and client pings) and a write pump (queued messages and
// server pings). Delivery is fire-and-forget: the stored notification log
// stays the source of truth, and a tab that misses a push catches up on
// its next GET /api/notifications.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/robotics-league/internal/model"
)

// Message types
const (
	MessageTypeNotification = "notification"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"
)

// Message is the envelope for everything the server sends.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type delivery struct {
	profileID string
	message   *Message
}

// Hub tracks live clients per browser profile.
type Hub struct {
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}

	// guards clients for the read-only accessors
	mu sync.RWMutex

	logger *slog.Logger
}

// NewHub creates a Hub. Call Run before serving connections.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("websocket hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("websocket hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.profileID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.profileID] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("client registered",
				slog.String("client_id", c.id),
				slog.String("profile_id", c.profileID),
			)

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.profileID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.profileID)
	}
	c.closeSend()
	h.logger.Debug("client unregistered",
		slog.String("client_id", c.id),
		slog.String("profile_id", c.profileID),
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for profileID, set := range h.clients {
		for c := range set {
			c.closeSend()
		}
		delete(h.clients, profileID)
	}
}

func (h *Hub) deliver(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[d.profileID]
	if len(set) == 0 {
		return
	}
	data, err := json.Marshal(d.message)
	if err != nil {
		h.logger.Error("failed to marshal message", slog.String("error", err.Error()))
		return
	}
	for c := range set {
		if !c.enqueue(data) {
			h.logger.Warn("client buffer full, skipping", slog.String("client_id", c.id))
		}
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues n for every live client of profileID. It never blocks;
// when the queue is full the push is dropped.
func (h *Hub) Publish(profileID string, n model.Notification) {
	d := delivery{
		profileID: profileID,
		message: &Message{
			Type:      MessageTypeNotification,
			Data:      n,
			Timestamp: time.Now().UTC(),
		},
	}
	select {
	case h.broadcast <- d:
	default:
		h.logger.Warn("broadcast queue full, dropping notification",
			slog.String("profile_id", profileID),
		)
	}
}

// Connections returns the number of live clients for profileID.
func (h *Hub) Connections(profileID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[profileID])
}

// TotalConnections returns the number of live clients across all profiles.
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
