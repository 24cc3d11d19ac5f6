package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/config"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = config.DriverMemory
	cfg.Users.Driver = config.DriverMemory
	cfg.Auth.JWTSecret = "test-secret-at-least-16-chars"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

// startTestServer serves the full router with a running hub.
func startTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
		s.close()
	})
	return s, ts
}

// browser is an http.Client with its own cookie jar, like one browser profile.
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func call(t *testing.T, c *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	_, ts := startTestServer(t, testConfig())

	resp := call(t, browser(t), http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["storage"])
}

func TestProfileCookieKeepsBrowsersApart(t *testing.T) {
	_, ts := startTestServer(t, testConfig())
	ana := browser(t)
	other := browser(t)

	resp := call(t, ana, http.MethodPost, ts.URL+"/api/auth/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	var found bool
	for _, c := range ana.Jar.Cookies(u) {
		if c.Name == auth.ProfileCookie {
			found = true
		}
	}
	require.True(t, found, "profile cookie issued")

	resp = call(t, ana, http.MethodGet, ts.URL+"/api/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, other, http.MethodGet, ts.URL+"/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The account is shared; the other browser can sign in to it.
	resp = call(t, other, http.MethodPost, ts.URL+"/api/auth/login", map[string]string{
		"email": "ana@example.com", "password": "pw123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGoogleRoutesOnlyWhenConfigured(t *testing.T) {
	_, ts := startTestServer(t, testConfig())
	c := browser(t)
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp := call(t, c, http.MethodGet, ts.URL+"/auth/google/login", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cfg := testConfig()
	cfg.Auth.Google.ClientID = "client"
	cfg.Auth.Google.ClientSecret = "secret"
	_, ts = startTestServer(t, cfg)

	resp = call(t, c, http.MethodGet, ts.URL+"/auth/google/login", nil)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "accounts.google.com")
}

func TestNotificationStream(t *testing.T) {
	s, ts := startTestServer(t, testConfig())
	c := browser(t)

	// First request mints the profile cookie.
	resp := call(t, c, http.MethodGet, ts.URL+"/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, ck := range c.Jar.Cookies(u) {
		header.Add("Cookie", ck.String())
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/notifications/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.TotalConnections() == 1 },
		2*time.Second, 10*time.Millisecond)
	resp = call(t, c, http.MethodPost, ts.URL+"/api/auth/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			Type  string `json:"type"`
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, "welcome", msg.Data.Type)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "etcd"

	var (
		s   *Server
		err error
	)
	require.NotPanics(t, func() {
		s, err = New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	assert.Nil(t, s)
	assert.ErrorContains(t, err, `unknown storage driver "etcd"`)
}

func TestNew_FailureAfterOpeningStore(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = t.TempDir() + "/league.db"
	cfg.Users.Driver = "etcd"

	var err error
	require.NotPanics(t, func() {
		_, err = New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	assert.ErrorContains(t, err, `unknown users driver "etcd"`)
}

func TestNew_SQLiteSharedFile(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Users.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = t.TempDir() + "/league.db"

	s, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer s.close()
	assert.Len(t, s.closers, 1, "storage and users share one database")
}
