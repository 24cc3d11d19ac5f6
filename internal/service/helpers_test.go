package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/catalog"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository"
	"github.com/sakif/robotics-league/internal/repository/memory"
	"github.com/sakif/robotics-league/internal/storage"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// conflictingRepo wraps a real repository and fails the next N Update calls
// with a version conflict, as if another writer got there first.
type conflictingRepo struct {
	repository.UserRepository
	mu        sync.Mutex
	conflicts int
	updates   int
}

func (r *conflictingRepo) Update(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	r.updates++
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return apperror.Conflict("user", u.ID)
	}
	r.mu.Unlock()
	return r.UserRepository.Update(ctx, u)
}

// failingBackend refuses writes to one key and passes everything else through.
type failingBackend struct {
	storage.Backend
	failKey string
}

func (b *failingBackend) Set(ctx context.Context, ns, key, value string) error {
	if key == b.failKey {
		return errors.New("quota exceeded")
	}
	return b.Backend.Set(ctx, ns, key, value)
}

// undeletableBackend refuses to delete one key until failKey is cleared.
type undeletableBackend struct {
	storage.Backend
	failKey string
}

func (b *undeletableBackend) Delete(ctx context.Context, ns, key string) error {
	if key == b.failKey {
		return errors.New("storage unavailable")
	}
	return b.Backend.Delete(ctx, ns, key)
}

// recordingPublisher remembers what was published.
type recordingPublisher struct {
	mu   sync.Mutex
	sent map[string][]model.Notification
}

func (p *recordingPublisher) Publish(profileID string, n model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = make(map[string][]model.Notification)
	}
	p.sent[profileID] = append(p.sent[profileID], n)
}

func (p *recordingPublisher) count(profileID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent[profileID])
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture bundles a SessionManager with the stores behind it.
type fixture struct {
	mgr     *SessionManager
	users   repository.UserRepository
	backend storage.Backend
	notes   *NotificationLog
	pub     *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewUserStore(), storage.NewMemory())
}

func newFixtureWith(t *testing.T, users repository.UserRepository, backend storage.Backend) *fixture {
	t.Helper()
	pub := &recordingPublisher{}
	notes := NewNotificationLog(50, pub, discardLogger())
	notes.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	// bcrypt.MinCost keeps hashing fast in tests.
	mgr := NewSessionManager(users, catalog.Default(), auth.NewPasswordService(bcrypt.MinCost), notes, discardLogger())
	return &fixture{mgr: mgr, users: users, backend: backend, notes: notes, pub: pub}
}

// local returns the storage view of one browser profile.
func (f *fixture) local(profileID string) *storage.Local {
	return storage.NewLocal(f.backend, profileID)
}

// freshManager simulates a server restart: same stores, no in-memory pointer.
func (f *fixture) freshManager() *SessionManager {
	return NewSessionManager(f.users, catalog.Default(), auth.NewPasswordService(bcrypt.MinCost), f.notes, discardLogger())
}

func (f *fixture) register(t *testing.T, local *storage.Local, name, email, password string) *model.User {
	t.Helper()
	res, err := f.mgr.Register(context.Background(), local, name, email, password)
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return res.User
}

func strPtr(s string) *string { return &s }
