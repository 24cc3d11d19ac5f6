package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, name, password_hash, auth_provider, avatar, bio, location,
	interests, social_links, followed_teams, followed_tournaments, theme, version,
	created_at, updated_at`

// jsonFields holds the JSON-encoded collection columns of a user row.
type jsonFields struct {
	interests, socialLinks, teams, tournaments string
}

func encodeFields(u *model.User) (jsonFields, error) {
	var f jsonFields
	for _, c := range []struct {
		dst *string
		v   any
	}{
		{&f.interests, u.Interests},
		{&f.socialLinks, u.SocialLinks},
		{&f.teams, u.FollowedTeams},
		{&f.tournaments, u.FollowedTournaments},
	} {
		b, err := json.Marshal(c.v)
		if err != nil {
			return f, err
		}
		*c.dst = string(b)
	}
	return f, nil
}

func (f jsonFields) decode(u *model.User) error {
	if err := json.Unmarshal([]byte(f.interests), &u.Interests); err != nil {
		return fmt.Errorf("interests: %w", err)
	}
	if err := json.Unmarshal([]byte(f.socialLinks), &u.SocialLinks); err != nil {
		return fmt.Errorf("social_links: %w", err)
	}
	if err := json.Unmarshal([]byte(f.teams), &u.FollowedTeams); err != nil {
		return fmt.Errorf("followed_teams: %w", err)
	}
	if err := json.Unmarshal([]byte(f.tournaments), &u.FollowedTournaments); err != nil {
		return fmt.Errorf("followed_tournaments: %w", err)
	}
	u.Normalize()
	return nil
}

// isUniqueEmailViolation recognises SQLite's UNIQUE constraint error on users.email.
func isUniqueEmailViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	var (
		u        model.User
		provider string
		f        jsonFields
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&provider,
		&u.Avatar,
		&u.Bio,
		&u.Location,
		&f.interests,
		&f.socialLinks,
		&f.teams,
		&f.tournaments,
		&u.Theme,
		&u.Version,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.AuthProvider = model.AuthProvider(provider)
	if err := f.decode(&u); err != nil {
		return nil, fmt.Errorf("decoding user %s: %w", u.ID, err)
	}
	return &u, nil
}

// FindByID retrieves a user by their internal ID.
// Returns apperror.UserNotFound if no user exists with that ID.
func (db *DB) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := db.scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.UserNotFound(id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email (exact match).
func (db *DB) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := db.scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// Insert adds a new user. The UNIQUE index on email turns a duplicate into
// apperror.DuplicateEmail.
func (db *DB) Insert(ctx context.Context, user *model.User) error {
	user.Normalize()
	f, err := encodeFields(user)
	if err != nil {
		return fmt.Errorf("sqlite: encoding user: %w", err)
	}

	now := time.Now().UTC()
	id := xid.New().String()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.AuthProvider),
		user.Avatar,
		user.Bio,
		user.Location,
		f.interests,
		f.socialLinks,
		f.teams,
		f.tournaments,
		user.Theme,
		1,
		now,
		now,
	)
	if err != nil {
		if isUniqueEmailViolation(err) {
			return apperror.DuplicateEmail(user.Email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	user.ID = id
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// Update writes the user back, guarded by the version column.
//
// OPTIMISTIC LOCKING:
// `WHERE id = ? AND version = ?` only matches if nobody else wrote the row
// since we read it. Zero rows affected means either the row is gone or the
// version moved on; one extra SELECT tells the two apart.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.Normalize()
	f, err := encodeFields(user)
	if err != nil {
		return fmt.Errorf("sqlite: encoding user %s: %w", user.ID, err)
	}

	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET
			email = ?, name = ?, password_hash = ?, auth_provider = ?, avatar = ?,
			bio = ?, location = ?, interests = ?, social_links = ?,
			followed_teams = ?, followed_tournaments = ?, theme = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.AuthProvider),
		user.Avatar,
		user.Bio,
		user.Location,
		f.interests,
		f.socialLinks,
		f.teams,
		f.tournaments,
		user.Theme,
		now,
		user.ID,
		user.Version,
	)
	if err != nil {
		if isUniqueEmailViolation(err) {
			return apperror.DuplicateEmail(user.Email)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of user %s: %w", user.ID, err)
	}
	if n == 0 {
		var exists int
		if err := db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE id = ?`, user.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: checking user %s: %w", user.ID, err)
		}
		if exists == 0 {
			return apperror.UserNotFound(user.ID)
		}
		return apperror.Conflict("user", user.ID)
	}

	user.Version++
	user.UpdatedAt = now
	return nil
}

// Count returns the number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}
