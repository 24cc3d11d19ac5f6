package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/storage"
)

// ProfileUpdate is a partial update of the editable profile fields.
//
// MERGE RULES:
//   - nil pointer / nil slice / nil map: field untouched
//   - Name, Avatar, Bio, Location, Theme: replaced
//   - Interests: replaced as a whole (send [] to clear)
//   - SocialLinks: merged per provider; an empty handle removes that provider
//
// Version, when set, must equal the stored version or the update is
// rejected with apperror.ErrConflict. Clients send back the version they
// rendered the form from to avoid overwriting a change made elsewhere.
type ProfileUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Avatar      *string           `json:"avatar,omitempty"`
	Bio         *string           `json:"bio,omitempty"`
	Location    *string           `json:"location,omitempty"`
	Theme       *string           `json:"theme,omitempty"`
	Interests   []string          `json:"interests,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
	Version     *int              `json:"version,omitempty"`
}

func (p ProfileUpdate) validate() error {
	if p.Name != nil {
		if err := validateName(strings.TrimSpace(*p.Name)); err != nil {
			return err
		}
	}
	if p.Bio != nil && len([]rune(*p.Bio)) > maxBioLen {
		return apperror.ValidationFailed("bio", "bio must be 500 characters or fewer")
	}
	if p.Location != nil && len([]rune(*p.Location)) > maxLocationLen {
		return apperror.ValidationFailed("location", "location must be 100 characters or fewer")
	}
	if p.Theme != nil && *p.Theme != model.ThemeLight && *p.Theme != model.ThemeDark {
		return apperror.ValidationFailed("theme", "theme must be light or dark")
	}
	if len(p.Interests) > maxInterests {
		return apperror.ValidationFailed("interests", "at most 20 interests")
	}
	for provider := range p.SocialLinks {
		if normalizeProvider(provider) == "" {
			return apperror.ValidationFailed("socialLinks", "social provider name is required")
		}
	}
	return nil
}

// apply merges p into u and reports whether anything changed.
func (p ProfileUpdate) apply(u *model.User) bool {
	changed := false
	setString := func(dst *string, src *string, trim bool) {
		if src == nil {
			return
		}
		v := *src
		if trim {
			v = strings.TrimSpace(v)
		}
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	setString(&u.Name, p.Name, true)
	setString(&u.Avatar, p.Avatar, true)
	setString(&u.Bio, p.Bio, false)
	setString(&u.Location, p.Location, true)
	setString(&u.Theme, p.Theme, false)

	if p.Interests != nil {
		interests := cleanInterests(p.Interests)
		if !slices.Equal(u.Interests, interests) {
			u.Interests = interests
			changed = true
		}
	}
	for provider, handle := range p.SocialLinks {
		if setSocialLink(u, normalizeProvider(provider), strings.TrimSpace(handle)) {
			changed = true
		}
	}
	return changed
}

// cleanInterests trims entries and drops blanks and repeats, keeping order.
func cleanInterests(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func setSocialLink(u *model.User, provider, handle string) bool {
	old, had := u.SocialLinks[provider]
	if handle == "" {
		if !had {
			return false
		}
		delete(u.SocialLinks, provider)
		return true
	}
	if had && old == handle {
		return false
	}
	u.SocialLinks[provider] = handle
	return true
}

// UpdateProfile merges update into the user's record, refreshes the session
// mirror if this profile is signed in as that user, and returns the result.
// Applying the same update twice leaves the same record.
func (m *SessionManager) UpdateProfile(ctx context.Context, local *storage.Local, userID string, update ProfileUpdate) (*model.User, error) {
	if err := update.validate(); err != nil {
		return nil, err
	}

	user, changed, err := m.mutate(ctx, userID, func(u *model.User) (bool, error) {
		if update.Version != nil && *update.Version != u.Version {
			return false, apperror.Conflict("user", u.ID)
		}
		return update.apply(u), nil
	})
	if err != nil {
		return nil, m.wrapWrite("updating profile", err)
	}
	return m.afterWrite(ctx, local, user, changed, model.NotificationProfile,
		"Profile updated", "Your profile changes were saved.")
}

// SetSocialLink sets one social handle. An empty handle removes the provider.
func (m *SessionManager) SetSocialLink(ctx context.Context, local *storage.Local, userID, provider, handle string) (*model.User, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return nil, apperror.ValidationFailed("provider", "social provider name is required")
	}
	handle = strings.TrimSpace(handle)

	user, changed, err := m.mutate(ctx, userID, func(u *model.User) (bool, error) {
		return setSocialLink(u, provider, handle), nil
	})
	if err != nil {
		return nil, m.wrapWrite("setting social link", err)
	}
	return m.afterWrite(ctx, local, user, changed, model.NotificationProfile,
		"Profile updated", fmt.Sprintf("Your %s link was updated.", provider))
}

// ChangeEmail moves the account to a new address.
func (m *SessionManager) ChangeEmail(ctx context.Context, local *storage.Local, userID, newEmail string) (*model.User, error) {
	newEmail = normalizeEmail(newEmail)
	if err := validateEmail(newEmail); err != nil {
		return nil, err
	}

	user, changed, err := m.mutate(ctx, userID, func(u *model.User) (bool, error) {
		if u.Email == newEmail {
			return false, nil
		}
		u.Email = newEmail
		return true, nil
	})
	if err != nil {
		return nil, m.wrapWrite("changing email", err)
	}
	return m.afterWrite(ctx, local, user, changed, model.NotificationEmail,
		"Email changed", fmt.Sprintf("Your account email is now %s.", newEmail))
}

// ChangePassword replaces the password. current must match the existing one;
// accounts created through Google have none yet and skip that check.
func (m *SessionManager) ChangePassword(ctx context.Context, local *storage.Local, userID, current, next string) error {
	if err := validatePassword("newPassword", next); err != nil {
		return err
	}
	hash, err := m.passwords.Hash(next)
	if err != nil {
		return fmt.Errorf("service/session: hashing password: %w", err)
	}

	user, changed, err := m.mutate(ctx, userID, func(u *model.User) (bool, error) {
		if u.PasswordHash != "" {
			if err := m.passwords.Verify(u.PasswordHash, current); err != nil {
				if errors.Is(err, auth.ErrPasswordMismatch) {
					return false, apperror.InvalidCredentials()
				}
				return false, fmt.Errorf("verifying password: %w", err)
			}
		}
		u.PasswordHash = hash
		return true, nil
	})
	if err != nil {
		return m.wrapWrite("changing password", err)
	}
	_, err = m.afterWrite(ctx, local, user, changed, model.NotificationPassword,
		"Password changed", "Your password was changed.")
	return err
}

// =========================================================================
// FOLLOWS
// =========================================================================

// FollowTeam adds a team to the user's followed list. Following twice is a no-op.
func (m *SessionManager) FollowTeam(ctx context.Context, local *storage.Local, userID string, teamID int) (*model.User, error) {
	team, ok := m.catalog.Team(teamID)
	if !ok {
		return nil, apperror.NotFound("team", fmt.Sprint(teamID))
	}
	return m.follow(ctx, local, userID, teamID, team.Name, true,
		func(u *model.User) *[]int { return &u.FollowedTeams })
}

// UnfollowTeam removes a team. Ids not in the catalog are still removable.
func (m *SessionManager) UnfollowTeam(ctx context.Context, local *storage.Local, userID string, teamID int) (*model.User, error) {
	name := fmt.Sprintf("team %d", teamID)
	if team, ok := m.catalog.Team(teamID); ok {
		name = team.Name
	}
	return m.follow(ctx, local, userID, teamID, name, false,
		func(u *model.User) *[]int { return &u.FollowedTeams })
}

// FollowTournament adds a tournament to the user's followed list.
func (m *SessionManager) FollowTournament(ctx context.Context, local *storage.Local, userID string, tournamentID int) (*model.User, error) {
	t, ok := m.catalog.Tournament(tournamentID)
	if !ok {
		return nil, apperror.NotFound("tournament", fmt.Sprint(tournamentID))
	}
	return m.follow(ctx, local, userID, tournamentID, t.Name, true,
		func(u *model.User) *[]int { return &u.FollowedTournaments })
}

// UnfollowTournament removes a tournament from the followed list.
func (m *SessionManager) UnfollowTournament(ctx context.Context, local *storage.Local, userID string, tournamentID int) (*model.User, error) {
	name := fmt.Sprintf("tournament %d", tournamentID)
	if t, ok := m.catalog.Tournament(tournamentID); ok {
		name = t.Name
	}
	return m.follow(ctx, local, userID, tournamentID, name, false,
		func(u *model.User) *[]int { return &u.FollowedTournaments })
}

func (m *SessionManager) follow(ctx context.Context, local *storage.Local, userID string, id int, name string, add bool, list func(*model.User) *[]int) (*model.User, error) {
	user, changed, err := m.mutate(ctx, userID, func(u *model.User) (bool, error) {
		ids := list(u)
		i := slices.Index(*ids, id)
		switch {
		case add && i < 0:
			*ids = append(*ids, id)
			return true, nil
		case !add && i >= 0:
			*ids = slices.Delete(*ids, i, i+1)
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, m.wrapWrite("updating follows", err)
	}

	if add {
		return m.afterWrite(ctx, local, user, changed, model.NotificationFollow,
			"Following "+name, fmt.Sprintf("You will get updates about %s.", name))
	}
	return m.afterWrite(ctx, local, user, changed, model.NotificationUnfollow,
		"Unfollowed "+name, fmt.Sprintf("You no longer follow %s.", name))
}

// =========================================================================
// SETTINGS
// =========================================================================

// Settings returns the user's saved preferences, or the defaults if none
// were saved in this profile.
func (m *SessionManager) Settings(ctx context.Context, local *storage.Local, userID string) (model.Settings, error) {
	if _, err := m.users.FindByID(ctx, userID); err != nil {
		return model.Settings{}, err
	}
	s, ok, err := local.Settings(ctx, userID)
	if err != nil {
		return model.Settings{}, fmt.Errorf("service/session: reading settings: %w", err)
	}
	if !ok {
		return model.DefaultSettings(), nil
	}
	return s, nil
}

// SaveSettings stores the user's preferences under settings_<userId>.
func (m *SessionManager) SaveSettings(ctx context.Context, local *storage.Local, userID string, s model.Settings) (model.Settings, error) {
	switch s.ProfileVisibility {
	case "":
		s.ProfileVisibility = model.VisibilityPublic
	case model.VisibilityPublic, model.VisibilityPrivate:
	default:
		return model.Settings{}, apperror.ValidationFailed("profileVisibility", "profile visibility must be public or private")
	}
	if _, err := m.users.FindByID(ctx, userID); err != nil {
		return model.Settings{}, err
	}
	if err := local.SetSettings(ctx, userID, s); err != nil {
		return model.Settings{}, fmt.Errorf("service/session: saving settings: %w", err)
	}

	m.notes.Append(ctx, local, model.NotificationSettings,
		"Settings saved", "Your preferences were updated.")
	return s, nil
}

// =========================================================================
// HELPERS
// =========================================================================

// wrapWrite keeps apperror values as they are so handlers can map them.
func (m *SessionManager) wrapWrite(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("service/session: %s: %w", op, err)
}

// afterWrite refreshes the mirror and records a notification when the
// write actually changed something.
func (m *SessionManager) afterWrite(ctx context.Context, local *storage.Local, user *model.User, changed bool, typ model.NotificationType, title, description string) (*model.User, error) {
	if !changed {
		return user, nil
	}
	if err := m.refreshMirror(ctx, local, user); err != nil {
		return nil, err
	}
	m.logger.Info("user updated",
		slog.String("user_id", user.ID),
		slog.String("change", string(typ)),
		slog.Int("version", user.Version),
	)
	m.notes.Append(ctx, local, typ, title, description)
	return user, nil
}
