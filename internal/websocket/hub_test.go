package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/robotics-league/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startHub runs a hub behind a test server. The profile comes from the
// ?profile= query parameter.
func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	logger := discardLogger()
	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, r.URL.Query().Get("profile"), logger, w, r)
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, profileID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?profile=" + profileID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func waitConnections(t *testing.T, hub *Hub, profileID string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Connections(profileID) == want
	}, 2*time.Second, 10*time.Millisecond)
}

// ============================================================
// Publish
// ============================================================

func TestPublish_DeliversToProfile(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv, "p1")
	waitConnections(t, hub, "p1", 1)

	hub.Publish("p1", model.Notification{ID: "n1", Type: model.NotificationWelcome, Title: "Welcome!"})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeNotification, msg["type"])
	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "n1", data["id"])
	assert.Equal(t, "Welcome!", data["title"])
}

func TestPublish_OtherProfilesUntouched(t *testing.T) {
	hub, srv, _ := startHub(t)
	p1 := dial(t, srv, "p1")
	p2 := dial(t, srv, "p2")
	waitConnections(t, hub, "p1", 1)
	waitConnections(t, hub, "p2", 1)

	hub.Publish("p1", model.Notification{ID: "for-p1"})
	hub.Publish("p2", model.Notification{ID: "for-p2"})

	// p2's first frame must be its own notification.
	msg := readMessage(t, p2)
	assert.Equal(t, "for-p2", msg["data"].(map[string]any)["id"])

	msg = readMessage(t, p1)
	assert.Equal(t, "for-p1", msg["data"].(map[string]any)["id"])
}

func TestPublish_AllTabsOfProfile(t *testing.T) {
	hub, srv, _ := startHub(t)
	a := dial(t, srv, "p1")
	b := dial(t, srv, "p1")
	waitConnections(t, hub, "p1", 2)

	hub.Publish("p1", model.Notification{ID: "n1"})

	assert.Equal(t, "n1", readMessage(t, a)["data"].(map[string]any)["id"])
	assert.Equal(t, "n1", readMessage(t, b)["data"].(map[string]any)["id"])
}

func TestPublish_NoClientsIsNoop(t *testing.T) {
	hub := NewHub(discardLogger())
	// Hub not running: Publish must not block.
	done := make(chan struct{})
	go func() {
		hub.Publish("nobody", model.Notification{ID: "x"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

// ============================================================
// Client messages and lifecycle
// ============================================================

func TestClient_PingPong(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv, "p1")
	waitConnections(t, hub, "p1", 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, MessageTypePong, readMessage(t, conn)["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	assert.Equal(t, MessageTypeError, readMessage(t, conn)["type"])
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv, "p1")
	waitConnections(t, hub, "p1", 1)

	conn.Close()
	waitConnections(t, hub, "p1", 0)
	assert.Equal(t, 0, hub.TotalConnections())
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, srv, cancel := startHub(t)
	conn := dial(t, srv, "p1")
	waitConnections(t, hub, "p1", 1)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived),
		"expected a close frame, got %v", err)
	assert.Equal(t, 0, hub.TotalConnections())
}
