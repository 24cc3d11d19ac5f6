// Package sqlite keeps league accounts and profile key-value entries in a
// single SQLite file.
//
// One *DB serves two roles:
//   - repository.UserRepository over the users table (user.go)
//   - storage.Backend over the kv table (kv.go)
//
// The driver is modernc.org/sqlite, a pure Go port, so the server builds
// without CGo. Use ":memory:" in tests.
package sqlite

import (
	"database/sql"
	"fmt"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/league.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (great for tests, lost on close)
//
// IN-MEMORY GOTCHA:
// Every connection to ":memory:" gets its OWN empty database. With a pool of
// several connections, a table created on one connection is invisible on the
// next. We pin the pool to a single connection for ":memory:".
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open is lazy; surface a bad path now rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// A writer that finds the file locked waits up to 5s instead of failing
	// immediately with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	// Run database migrations to create/update tables
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs all database migrations.
//
// Tables use CREATE TABLE IF NOT EXISTS; columns added after the first
// release go through addColumnIfNotExists.
func (db *DB) migrate() error {
	// users: list and map fields are stored as JSON text.
	// email is UNIQUE so two racing registrations cannot both land.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                   TEXT PRIMARY KEY,
			email                TEXT NOT NULL UNIQUE,
			name                 TEXT NOT NULL,
			password_hash        TEXT NOT NULL DEFAULT '',
			auth_provider        TEXT NOT NULL DEFAULT 'email',
			avatar               TEXT NOT NULL DEFAULT '',
			bio                  TEXT NOT NULL DEFAULT '',
			location             TEXT NOT NULL DEFAULT '',
			interests            TEXT NOT NULL DEFAULT '[]',
			social_links         TEXT NOT NULL DEFAULT '{}',
			followed_teams       TEXT NOT NULL DEFAULT '[]',
			followed_tournaments TEXT NOT NULL DEFAULT '[]',
			created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// theme and version arrived with the settings page and optimistic locking.
	if err := db.addColumnIfNotExists("users", "theme", "TEXT NOT NULL DEFAULT 'light'"); err != nil {
		return fmt.Errorf("adding theme to users: %w", err)
	}
	if err := db.addColumnIfNotExists("users", "version", "INTEGER NOT NULL DEFAULT 1"); err != nil {
		return fmt.Errorf("adding version to users: %w", err)
	}

	// kv: one row per (profile namespace, key).
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Safe to run on every start.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
