// Package service holds the league's business rules.
//
//	handler (HTTP) → SessionManager → repository.UserRepository (accounts)
//	                               ↘ storage.Local (this browser profile)
//	                               ↘ NotificationLog
//
// SessionManager owns the sign-in state of every browser profile. Each
// profile is either logged out or logged in as one user. That state lives in
// two places:
//
//   - the profile's "currentUser" mirror in storage (durable, survives restarts)
//   - an in-memory pointer profileID → userID (lost on restart)
//
// CurrentUser reads the mirror first and only falls back to the pointer.
// Session is the one accessor navigation chrome should use; nothing outside
// this package should read userLoggedIn/userName/currentUser directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/catalog"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository"
	"github.com/sakif/robotics-league/internal/storage"
)

// maxWriteAttempts bounds the re-read/re-apply loop in mutate.
const maxWriteAttempts = 3

// SessionManager handles registration, sign-in and profile changes.
type SessionManager struct {
	users     repository.UserRepository
	catalog   catalog.Store
	passwords *auth.PasswordService
	notes     *NotificationLog
	logger    *slog.Logger

	mu      sync.Mutex
	current map[string]string // profileID → userID
}

// NewSessionManager wires a SessionManager. catalog is used to check that
// followed teams and tournaments exist.
func NewSessionManager(
	users repository.UserRepository,
	catalog catalog.Store,
	passwords *auth.PasswordService,
	notes *NotificationLog,
	logger *slog.Logger,
) *SessionManager {
	return &SessionManager{
		users:     users,
		catalog:   catalog,
		passwords: passwords,
		notes:     notes,
		logger:    logger,
		current:   make(map[string]string),
	}
}

// AuthResult is returned by the sign-in operations.
// Redirect is the one-shot redirectAfterLogin target, if one was pending.
type AuthResult struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect,omitempty"`
}

// Session is what page chrome needs to render the signed-in state.
type Session struct {
	LoggedIn            bool        `json:"loggedIn"`
	UserName            string      `json:"userName,omitempty"`
	User                *model.User `json:"user"`
	UnreadNotifications int         `json:"unreadNotifications"`
}

// =========================================================================
// SIGN-IN STATE
// =========================================================================

// Register creates an email/password account and signs the profile into it.
func (m *SessionManager) Register(ctx context.Context, local *storage.Local, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}

	if _, err := m.users.FindByEmail(ctx, email); err == nil {
		return nil, apperror.DuplicateEmail(email)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/session: checking email: %w", err)
	}

	hash, err := m.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/session: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AuthProvider: model.AuthProviderEmail,
		Avatar:       model.DefaultAvatar,
	}
	user.Normalize()

	// The repository enforces uniqueness again for registrations that race
	// past the check above.
	if err := m.users.Insert(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("service/session: creating user: %w", err)
	}

	m.logger.Info("user registered", slog.String("user_id", user.ID))

	result, err := m.signIn(ctx, local, user)
	if err != nil {
		return nil, err
	}
	m.notes.Append(ctx, local, model.NotificationWelcome,
		"Welcome to the league!",
		fmt.Sprintf("Your account %s is ready.", user.Email))
	return result, nil
}

// Login signs the profile in with email and password.
// Nothing changes on failure: the previous current user, if any, stays.
func (m *SessionManager) Login(ctx context.Context, local *storage.Local, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NoSuchAccount(email)
		}
		return nil, fmt.Errorf("service/session: finding user: %w", err)
	}

	// Google-only accounts have no password until they set one.
	if user.PasswordHash == "" {
		return nil, apperror.InvalidCredentials()
	}
	if err := m.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			m.logger.Info("login rejected", slog.String("user_id", user.ID))
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/session: verifying password: %w", err)
	}

	result, err := m.signIn(ctx, local, user)
	if err != nil {
		return nil, err
	}
	m.logger.Info("user logged in", slog.String("user_id", user.ID))
	m.notes.Append(ctx, local, model.NotificationLogin,
		"New sign-in",
		fmt.Sprintf("Signed in as %s.", user.Email))
	return result, nil
}

// LoginWithFederatedIdentity trusts the identity provider's profile as-is.
//
// UPSERT BY EMAIL:
// An existing account with that email gets its name, avatar and provider
// refreshed in place; otherwise a new account is created. Repeating the call
// never creates a second user.
func (m *SessionManager) LoginWithFederatedIdentity(ctx context.Context, local *storage.Local, profile model.FederatedProfile) (*AuthResult, error) {
	email := normalizeEmail(profile.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email
	}

	user, err := m.upsertFederated(ctx, email, name, profile.ImageURL)
	if err != nil {
		return nil, err
	}

	result, err := m.signIn(ctx, local, user)
	if err != nil {
		return nil, err
	}
	m.logger.Info("user logged in via google", slog.String("user_id", user.ID))
	m.notes.Append(ctx, local, model.NotificationLogin,
		"New sign-in",
		fmt.Sprintf("Signed in with Google as %s.", user.Email))
	return result, nil
}

func (m *SessionManager) upsertFederated(ctx context.Context, email, name, imageURL string) (*model.User, error) {
	for attempt := 1; ; attempt++ {
		existing, err := m.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			u, _, err := m.mutate(ctx, existing.ID, func(u *model.User) (bool, error) {
				changed := u.Name != name || u.AuthProvider != model.AuthProviderGoogle
				u.Name = name
				u.AuthProvider = model.AuthProviderGoogle
				if imageURL != "" && u.Avatar != imageURL {
					u.Avatar = imageURL
					changed = true
				}
				return changed, nil
			})
			if err != nil {
				return nil, fmt.Errorf("service/session: updating federated user: %w", err)
			}
			return u, nil

		case errors.Is(err, apperror.ErrNotFound):
			avatar := imageURL
			if avatar == "" {
				avatar = model.DefaultAvatar
			}
			u := &model.User{
				Name:         name,
				Email:        email,
				AuthProvider: model.AuthProviderGoogle,
				Avatar:       avatar,
			}
			u.Normalize()
			err := m.users.Insert(ctx, u)
			if err == nil {
				m.logger.Info("user registered via google", slog.String("user_id", u.ID))
				return u, nil
			}
			// Someone registered the address between our lookup and insert:
			// go round again and take the update path.
			if errors.Is(err, apperror.ErrDuplicateEmail) && attempt < maxWriteAttempts {
				continue
			}
			return nil, fmt.Errorf("service/session: creating federated user: %w", err)

		default:
			return nil, fmt.Errorf("service/session: finding user: %w", err)
		}
	}
}

// signIn points the profile at user, mirrors it and consumes any pending redirect.
func (m *SessionManager) signIn(ctx context.Context, local *storage.Local, user *model.User) (*AuthResult, error) {
	m.setPointer(local.ProfileID(), user.ID)
	if err := local.SetSession(ctx, user); err != nil {
		return nil, fmt.Errorf("service/session: mirroring session: %w", err)
	}

	redirect, _, err := local.ConsumeRedirectAfterLogin(ctx)
	if err != nil {
		// A lost redirect only means landing on the default page.
		m.logger.Warn("reading redirectAfterLogin", slog.String("error", err.Error()))
	}
	return &AuthResult{User: user, Redirect: redirect}, nil
}

// Logout signs the profile out. The user record is untouched.
// Logging out a profile that is not signed in is a no-op.
func (m *SessionManager) Logout(ctx context.Context, local *storage.Local) error {
	user, err := m.CurrentUser(ctx, local)
	if err != nil {
		return err
	}

	// The pointer is only dropped once storage is clear.
	if err := local.ClearSession(ctx); err != nil {
		return fmt.Errorf("service/session: clearing session: %w", err)
	}
	m.clearPointer(local.ProfileID())

	if user != nil {
		m.logger.Info("user logged out", slog.String("user_id", user.ID))
		m.notes.Append(ctx, local, model.NotificationLogout,
			"Signed out",
			fmt.Sprintf("%s signed out of this browser.", user.Email))
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil when the profile is logged out.
//
// The storage mirror wins over the in-memory pointer so a restarted server
// (or a fresh SessionManager) still sees who is signed in. An unreadable
// mirror is logged and treated as absent.
func (m *SessionManager) CurrentUser(ctx context.Context, local *storage.Local) (*model.User, error) {
	mirror, err := local.CurrentUser(ctx)
	switch {
	case err == nil && mirror != nil:
		return mirror, nil
	case err != nil && !errors.Is(err, storage.ErrCorrupt):
		return nil, fmt.Errorf("service/session: reading session: %w", err)
	case err != nil:
		m.logger.Warn("ignoring corrupt session mirror",
			slog.String("profile_id", local.ProfileID()),
			slog.String("error", err.Error()),
		)
	}

	userID, ok := m.pointer(local.ProfileID())
	if !ok {
		return nil, nil
	}
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			m.clearPointer(local.ProfileID())
			return nil, nil
		}
		return nil, fmt.Errorf("service/session: loading current user: %w", err)
	}
	return user, nil
}

// Session is the single read path for "who is signed in here".
func (m *SessionManager) Session(ctx context.Context, local *storage.Local) (*Session, error) {
	user, err := m.CurrentUser(ctx, local)
	if err != nil {
		return nil, err
	}
	unread, err := m.notes.UnreadCount(ctx, local)
	if err != nil {
		m.logger.Warn("counting unread notifications", slog.String("error", err.Error()))
	}

	s := &Session{User: user, UnreadNotifications: unread}
	if user != nil {
		s.LoggedIn = true
		s.UserName = user.Name
	}
	return s, nil
}

// RequireUser is CurrentUser for operations that need a signed-in user.
func (m *SessionManager) RequireUser(ctx context.Context, local *storage.Local) (*model.User, error) {
	user, err := m.CurrentUser(ctx, local)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized("sign in required")
	}
	return user, nil
}

// SetRedirectAfterLogin remembers a local path to return to after sign-in.
// Only site-relative paths are accepted.
func (m *SessionManager) SetRedirectAfterLogin(ctx context.Context, local *storage.Local, path string) error {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return apperror.ValidationFailed("path", "redirect must be a site-relative path")
	}
	return local.SetRedirectAfterLogin(ctx, path)
}

// =========================================================================
// IN-MEMORY POINTER
// =========================================================================

func (m *SessionManager) setPointer(profileID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[profileID] = userID
}

func (m *SessionManager) clearPointer(profileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.current, profileID)
}

func (m *SessionManager) pointer(profileID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.current[profileID]
	return id, ok
}

// =========================================================================
// WRITES
// =========================================================================

// isVersionConflict is a stale-version Update, not a taken email (which also
// maps to ErrConflict).
func isVersionConflict(err error) bool {
	return errors.Is(err, apperror.ErrConflict) && !errors.Is(err, apperror.ErrDuplicateEmail)
}

// mutate loads the user, applies fn and writes the result back.
//
// When another writer bumps the version between our read and write, the
// change is re-applied to a fresh copy, up to maxWriteAttempts times. fn
// reporting changed=false skips the write entirely.
func (m *SessionManager) mutate(ctx context.Context, userID string, fn func(u *model.User) (bool, error)) (*model.User, bool, error) {
	for attempt := 1; ; attempt++ {
		u, err := m.users.FindByID(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		changed, err := fn(u)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return u, false, nil
		}

		err = m.users.Update(ctx, u)
		if err == nil {
			return u, true, nil
		}
		if !isVersionConflict(err) || attempt == maxWriteAttempts {
			return nil, false, err
		}
		m.logger.Debug("retrying user write after version conflict",
			slog.String("user_id", userID),
			slog.Int("attempt", attempt),
		)
	}
}

// refreshMirror rewrites the session mirror when user is this profile's
// signed-in user.
func (m *SessionManager) refreshMirror(ctx context.Context, local *storage.Local, user *model.User) error {
	current, err := m.CurrentUser(ctx, local)
	if err != nil {
		return err
	}
	if current == nil || current.ID != user.ID {
		return nil
	}
	if err := local.SetSession(ctx, user); err != nil {
		return fmt.Errorf("service/session: refreshing session: %w", err)
	}
	return nil
}
