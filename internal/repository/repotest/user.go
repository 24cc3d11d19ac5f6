// Package repotest holds the behaviour every UserRepository must share.
// Each implementation's tests call RunUserRepository with its own factory.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository"
)

// Factory returns a fresh, empty repository for one subtest.
type Factory func(t *testing.T) repository.UserRepository

// NewUser builds a valid, not yet inserted user.
func NewUser(email string) *model.User {
	u := &model.User{
		Name:         "Ana",
		Email:        email,
		PasswordHash: "$2a$04$hash",
		AuthProvider: model.AuthProviderEmail,
		Avatar:       model.DefaultAvatar,
		Interests:    []string{"robótica"},
		SocialLinks:  map[string]string{"github": "ana"},
	}
	u.Normalize()
	return u
}

func insert(t *testing.T, repo repository.UserRepository, email string) *model.User {
	t.Helper()
	u := NewUser(email)
	if err := repo.Insert(context.Background(), u); err != nil {
		t.Fatalf("Insert(%s) error = %v", email, err)
	}
	return u
}

// RunUserRepository runs the shared contract against repositories from factory.
func RunUserRepository(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("insert assigns id, timestamps and version", func(t *testing.T) {
		repo := factory(t)
		u := insert(t, repo, "ana@example.com")

		if u.ID == "" {
			t.Error("Insert() did not set ID")
		}
		if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
			t.Error("Insert() did not set timestamps")
		}
		if u.Version != 1 {
			t.Errorf("Version = %d, want 1", u.Version)
		}
	})

	t.Run("insert rejects duplicate email", func(t *testing.T) {
		repo := factory(t)
		first := insert(t, repo, "dup@example.com")

		err := repo.Insert(ctx, NewUser("dup@example.com"))
		if !errors.Is(err, apperror.ErrDuplicateEmail) {
			t.Fatalf("Insert() duplicate error = %v, want ErrDuplicateEmail", err)
		}

		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n != 1 {
			t.Errorf("Count() = %d after rejected insert, want 1", n)
		}

		stored, err := repo.FindByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if stored.Name != first.Name || stored.Version != 1 {
			t.Errorf("existing user changed after rejected insert: %+v", stored)
		}
	})

	t.Run("find by id and email round-trips every field", func(t *testing.T) {
		repo := factory(t)
		u := insert(t, repo, "fields@example.com")

		byID, err := repo.FindByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		byEmail, err := repo.FindByEmail(ctx, "fields@example.com")
		if err != nil {
			t.Fatalf("FindByEmail() error = %v", err)
		}

		for _, got := range []*model.User{byID, byEmail} {
			if got.ID != u.ID || got.Email != u.Email || got.PasswordHash != u.PasswordHash {
				t.Errorf("identity fields = %+v, want %+v", got, u)
			}
			if got.AuthProvider != model.AuthProviderEmail || got.Avatar != model.DefaultAvatar {
				t.Errorf("provider/avatar = %q/%q", got.AuthProvider, got.Avatar)
			}
			if len(got.Interests) != 1 || got.Interests[0] != "robótica" {
				t.Errorf("Interests = %v", got.Interests)
			}
			if got.SocialLinks["github"] != "ana" {
				t.Errorf("SocialLinks = %v", got.SocialLinks)
			}
			if got.FollowedTeams == nil || got.FollowedTournaments == nil {
				t.Error("follow lists should be empty, not nil")
			}
			if got.Theme != model.ThemeLight {
				t.Errorf("Theme = %q", got.Theme)
			}
		}
	})

	t.Run("unknown id and email", func(t *testing.T) {
		repo := factory(t)

		_, err := repo.FindByID(ctx, "missing")
		if !errors.Is(err, apperror.ErrUserNotFound) {
			t.Errorf("FindByID() error = %v, want ErrUserNotFound", err)
		}
		_, err = repo.FindByEmail(ctx, "missing@example.com")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("FindByEmail() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update bumps version and persists", func(t *testing.T) {
		repo := factory(t)
		u := insert(t, repo, "update@example.com")

		u.Bio = "Mentora de robótica"
		u.FollowedTeams = []int{1, 3}
		if err := repo.Update(ctx, u); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if u.Version != 2 {
			t.Errorf("Version after update = %d, want 2", u.Version)
		}

		got, err := repo.FindByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.Bio != "Mentora de robótica" || len(got.FollowedTeams) != 2 || got.Version != 2 {
			t.Errorf("stored user = %+v", got)
		}
	})

	t.Run("update with stale version conflicts", func(t *testing.T) {
		repo := factory(t)
		u := insert(t, repo, "stale@example.com")

		first, _ := repo.FindByID(ctx, u.ID)
		second, _ := repo.FindByID(ctx, u.ID)

		first.Location = "Saltillo"
		if err := repo.Update(ctx, first); err != nil {
			t.Fatalf("first Update() error = %v", err)
		}

		second.Location = "Monterrey"
		err := repo.Update(ctx, second)
		if !errors.Is(err, apperror.ErrConflict) {
			t.Fatalf("stale Update() error = %v, want ErrConflict", err)
		}

		got, _ := repo.FindByID(ctx, u.ID)
		if got.Location != "Saltillo" {
			t.Errorf("Location = %q, stale write should not land", got.Location)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		repo := factory(t)
		u := NewUser("ghost@example.com")
		u.ID = "ghost"
		u.Version = 1

		err := repo.Update(ctx, u)
		if !errors.Is(err, apperror.ErrUserNotFound) {
			t.Errorf("Update() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("update to a taken email", func(t *testing.T) {
		repo := factory(t)
		insert(t, repo, "taken@example.com")
		u := insert(t, repo, "mine@example.com")

		u.Email = "taken@example.com"
		err := repo.Update(ctx, u)
		if !errors.Is(err, apperror.ErrDuplicateEmail) {
			t.Errorf("Update() error = %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("email change moves the lookup key", func(t *testing.T) {
		repo := factory(t)
		u := insert(t, repo, "old@example.com")

		u.Email = "new@example.com"
		if err := repo.Update(ctx, u); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if _, err := repo.FindByEmail(ctx, "old@example.com"); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("FindByEmail(old) error = %v, want ErrNotFound", err)
		}
		got, err := repo.FindByEmail(ctx, "new@example.com")
		if err != nil {
			t.Fatalf("FindByEmail(new) error = %v", err)
		}
		if got.ID != u.ID {
			t.Errorf("FindByEmail(new).ID = %q, want %q", got.ID, u.ID)
		}
	})

	t.Run("returned users are copies", func(t *testing.T) {
		repo := factory(t)
		u := insert(t, repo, "copy@example.com")

		got, _ := repo.FindByID(ctx, u.ID)
		got.SocialLinks["github"] = "changed"
		got.Interests[0] = "changed"

		again, _ := repo.FindByID(ctx, u.ID)
		if again.SocialLinks["github"] != "ana" || again.Interests[0] != "robótica" {
			t.Errorf("mutating a returned user changed the store: %+v", again)
		}
	})
}
