// Package model defines the league's records: teams, tournaments, users and
// the small per-profile documents (notifications, settings, cart).
package model

import (
	"maps"
	"slices"
	"time"
)

// AuthProvider records how a user signs in.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// Theme values accepted for User.Theme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultAvatar is assigned to every account created with email + password.
const DefaultAvatar = "/images/default-avatar.png"

// User represents a registered league member.
//
// JSON SHAPE:
// The json tags match the "currentUser" record the site keeps in browser
// storage, so a serialized User can be dropped into that key as-is.
// The password hash is tagged `json:"-"`: it is never written to the
// session mirror or returned by the API.
//
// VERSIONING:
// Every successful write bumps Version. Repositories reject an update whose
// Version no longer matches the stored row, so two writers that read the same
// record cannot silently overwrite each other.
type User struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	PasswordHash        string            `json:"-"`
	AuthProvider        AuthProvider      `json:"authProvider"`
	Avatar              string            `json:"avatar"`
	Bio                 string            `json:"bio"`
	Location            string            `json:"location"`
	Interests           []string          `json:"interests"`
	SocialLinks         map[string]string `json:"socialLinks"`
	FollowedTeams       []int             `json:"followedTeams"`
	FollowedTournaments []int             `json:"followedTournaments"`
	Theme               string            `json:"theme"`
	Version             int               `json:"version"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate slices and maps freely.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Interests = slices.Clone(u.Interests)
	c.FollowedTeams = slices.Clone(u.FollowedTeams)
	c.FollowedTournaments = slices.Clone(u.FollowedTournaments)
	c.SocialLinks = maps.Clone(u.SocialLinks)
	return &c
}

// Normalize replaces nil collections with empty ones so the JSON form always
// carries [] and {} instead of null.
func (u *User) Normalize() {
	if u.Interests == nil {
		u.Interests = []string{}
	}
	if u.SocialLinks == nil {
		u.SocialLinks = map[string]string{}
	}
	if u.FollowedTeams == nil {
		u.FollowedTeams = []int{}
	}
	if u.FollowedTournaments == nil {
		u.FollowedTournaments = []int{}
	}
	if u.Theme == "" {
		u.Theme = ThemeLight
	}
}

// FederatedProfile is what an external identity provider tells us about the
// person signing in.
type FederatedProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}
