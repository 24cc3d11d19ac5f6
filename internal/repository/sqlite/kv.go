package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/robotics-league/internal/storage"
)

// compile-time check that *DB implements storage.Backend
var _ storage.Backend = (*DB)(nil)

// Get reads one profile key. A missing row is not an error.
func (db *DB) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: reading %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

// Set writes one profile key, replacing any previous value.
//
// UPSERT:
// ON CONFLICT ... DO UPDATE turns the insert into an update when the
// (namespace, key) primary key already exists, in one statement.
func (db *DB) Set(ctx context.Context, namespace, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes one profile key.
func (db *DB) Delete(ctx context.Context, namespace, key string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s/%s: %w", namespace, key, err)
	}
	return nil
}
