// Package storage is the server-side stand-in for a browser's local storage.
//
// Each browser profile owns one namespace in a Backend. Local wraps a Backend
// for one profile and exposes the keys the site has always used:
//
//	userLoggedIn        "true" | absent
//	userName            display name of the signed-in user
//	currentUser         JSON User record (the session mirror)
//	notifications       JSON array of Notification, newest first
//	redirectAfterLogin  one-shot path consumed by login/registration
//	cart                JSON array of CartItem
//	settings_<userId>   JSON Settings for one user
//
// Keys and value shapes are kept exactly, so data written by the old
// browser-only site can be imported as-is.
//
// CONCURRENCY:
// Backends are safe for concurrent use, but Local does nothing to serialise
// read-modify-write sequences. Two requests from the same profile that update
// the same key race, and the last write wins. Nothing here detects it.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/robotics-league/internal/model"
)

// Storage keys.
const (
	KeyUserLoggedIn       = "userLoggedIn"
	KeyUserName           = "userName"
	KeyCurrentUser        = "currentUser"
	KeyNotifications      = "notifications"
	KeyRedirectAfterLogin = "redirectAfterLogin"
	KeyCart               = "cart"
	keySettingsPrefix     = "settings_"
)

// SettingsKey returns the per-user settings key.
func SettingsKey(userID string) string {
	return keySettingsPrefix + userID
}

// ErrCorrupt wraps values that exist but cannot be decoded.
var ErrCorrupt = errors.New("storage: corrupt value")

// Backend is a namespaced string key-value store.
type Backend interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, namespace, key string) (value string, ok bool, err error)
	Set(ctx context.Context, namespace, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, namespace, key string) error
}

// Local is one profile's view of a Backend.
type Local struct {
	backend Backend
	profile string
}

// NewLocal scopes backend to profileID.
func NewLocal(backend Backend, profileID string) *Local {
	return &Local{backend: backend, profile: profileID}
}

// ProfileID is the namespace this Local reads and writes.
func (l *Local) ProfileID() string { return l.profile }

// GetItem, SetItem and RemoveItem are the raw string accessors.
func (l *Local) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := l.backend.Get(ctx, l.profile, key)
	if err != nil {
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return v, ok, nil
}

func (l *Local) SetItem(ctx context.Context, key, value string) error {
	if err := l.backend.Set(ctx, l.profile, key, value); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

func (l *Local) RemoveItem(ctx context.Context, key string) error {
	if err := l.backend.Delete(ctx, l.profile, key); err != nil {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// getJSON decodes key into dst. ok=false when the key is absent.
func (l *Local) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := l.GetItem(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func (l *Local) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return l.SetItem(ctx, key, string(b))
}

// CurrentUser returns the session mirror, or nil if none is stored.
func (l *Local) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	ok, err := l.getJSON(ctx, KeyCurrentUser, &u)
	if err != nil || !ok {
		return nil, err
	}
	u.Normalize()
	return &u, nil
}

// SetSession mirrors user as the signed-in user and refreshes the legacy
// userLoggedIn/userName keys alongside it.
func (l *Local) SetSession(ctx context.Context, user *model.User) error {
	if err := l.setJSON(ctx, KeyCurrentUser, user); err != nil {
		return err
	}
	if err := l.SetItem(ctx, KeyUserLoggedIn, "true"); err != nil {
		return err
	}
	return l.SetItem(ctx, KeyUserName, user.Name)
}

// ClearSession removes currentUser, userLoggedIn and userName.
func (l *Local) ClearSession(ctx context.Context) error {
	for _, key := range []string{KeyCurrentUser, KeyUserLoggedIn, KeyUserName} {
		if err := l.RemoveItem(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// LoggedIn reads the legacy boolean flag.
func (l *Local) LoggedIn(ctx context.Context) (bool, error) {
	v, ok, err := l.GetItem(ctx, KeyUserLoggedIn)
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}

// UserName reads the cached display name ("" when absent).
func (l *Local) UserName(ctx context.Context) (string, error) {
	v, _, err := l.GetItem(ctx, KeyUserName)
	return v, err
}

// Notifications returns the stored log, newest first. Absent means empty.
func (l *Local) Notifications(ctx context.Context) ([]model.Notification, error) {
	var list []model.Notification
	if _, err := l.getJSON(ctx, KeyNotifications, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Notification{}
	}
	return list, nil
}

// SetNotifications replaces the stored log.
func (l *Local) SetNotifications(ctx context.Context, list []model.Notification) error {
	return l.setJSON(ctx, KeyNotifications, list)
}

// SetRedirectAfterLogin remembers where to send the user after signing in.
func (l *Local) SetRedirectAfterLogin(ctx context.Context, path string) error {
	return l.SetItem(ctx, KeyRedirectAfterLogin, path)
}

// ConsumeRedirectAfterLogin returns the stored path and clears it.
func (l *Local) ConsumeRedirectAfterLogin(ctx context.Context) (string, bool, error) {
	v, ok, err := l.GetItem(ctx, KeyRedirectAfterLogin)
	if err != nil || !ok {
		return "", false, err
	}
	if err := l.RemoveItem(ctx, KeyRedirectAfterLogin); err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Cart returns the stored cart (empty when absent).
func (l *Local) Cart(ctx context.Context) ([]model.CartItem, error) {
	var items []model.CartItem
	if _, err := l.getJSON(ctx, KeyCart, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

// SetCart replaces the stored cart.
func (l *Local) SetCart(ctx context.Context, items []model.CartItem) error {
	return l.setJSON(ctx, KeyCart, items)
}

// Settings returns the user's saved settings; ok=false if never saved.
func (l *Local) Settings(ctx context.Context, userID string) (model.Settings, bool, error) {
	var s model.Settings
	ok, err := l.getJSON(ctx, SettingsKey(userID), &s)
	return s, ok, err
}

// SetSettings stores settings for userID.
func (l *Local) SetSettings(ctx context.Context, userID string, s model.Settings) error {
	return l.setJSON(ctx, SettingsKey(userID), s)
}
