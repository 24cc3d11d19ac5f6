package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, DriverSQLite, cfg.Users.Driver)
	assert.Equal(t, 50, cfg.Notifications.MaxEntries)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "http://localhost:8080/auth/google/callback", cfg.Auth.Google.CallbackURL)
	assert.False(t, cfg.Auth.Google.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLWithExpansion(t *testing.T) {
	t.Setenv("TEST_LEAGUE_SECRET", "s3cret")
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 2s
storage:
  driver: memory
users:
  driver: memory
auth:
  jwt_secret: ${TEST_LEAGUE_SECRET}
  bcrypt_cost: 4
notifications:
  max_entries: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, 10, cfg.Notifications.MaxEntries)
	// untouched sections still get defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "http://localhost:9090/auth/google/callback", cfg.Auth.Google.CallbackURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  driver: sqlite
`)
	t.Setenv("PORT", "7070")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.True(t, cfg.Auth.Google.Enabled())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [port"},
		{"unknown storage driver", "storage:\n  driver: mongo"},
		{"unknown users driver", "users:\n  driver: redis"},
		{"bad log format", "log:\n  format: xml"},
		{"bcrypt cost too high", "auth:\n  bcrypt_cost: 40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPostgresConnectionString(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "league", Password: "pw", Database: "league"}
	assert.Equal(t, "postgres://league:pw@db:5432/league?sslmode=disable", c.ConnectionString())

	c.SSLMode = "require"
	assert.Equal(t, "postgres://league:pw@db:5432/league?sslmode=require", c.ConnectionString())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "loud"}.SlogLevel())
}
