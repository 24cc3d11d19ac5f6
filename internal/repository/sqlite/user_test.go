package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sakif/robotics-league/internal/repository"
	"github.com/sakif/robotics-league/internal/repository/repotest"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" gives every test a fresh database that vanishes on Close.
// t.Helper() makes failures point at the caller's line.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepository(t, func(t *testing.T) repository.UserRepository {
		return newTestDB(t)
	})
}

// =========================================================================
// MIGRATION TESTS
// =========================================================================

// Opening the same file twice must not fail on the second migration run.
func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	u := repotest.NewUser("persist@example.com")
	if err := db.Insert(context.Background(), u); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	db.Close()

	db, err = New(path)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db.Close()

	got, err := db.FindByEmail(context.Background(), "persist@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() after reopen error = %v", err)
	}
	if got.ID != u.ID || got.Version != 1 {
		t.Errorf("reopened user = %+v, want id %s version 1", got, u.ID)
	}
}
