// Package postgres implements repository.UserRepository on PostgreSQL via pgx.
//
// Interests and follow lists are native arrays; social links are JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/config"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository"
)

// compile-time check that *Repository implements repository.UserRepository
var _ repository.UserRepository = (*Repository)(nil)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

const userColumns = `id, email, name, password_hash, auth_provider, avatar, bio, location,
	interests, social_links, followed_teams, followed_tournaments, theme, version,
	created_at, updated_at`

// Repository provides PostgreSQL-based user storage
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(ctx context.Context, cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return NewFromPool(pool, logger), nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool, logger *slog.Logger) *Repository {
	return &Repository{pool: pool, logger: logger}
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations creates the users table if needed.
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                   VARCHAR(32) PRIMARY KEY,
			email                TEXT NOT NULL,
			name                 TEXT NOT NULL,
			password_hash        TEXT NOT NULL DEFAULT '',
			auth_provider        VARCHAR(16) NOT NULL DEFAULT 'email',
			avatar               TEXT NOT NULL DEFAULT '',
			bio                  TEXT NOT NULL DEFAULT '',
			location             TEXT NOT NULL DEFAULT '',
			interests            TEXT[] NOT NULL DEFAULT '{}',
			social_links         JSONB NOT NULL DEFAULT '{}',
			followed_teams       INT[] NOT NULL DEFAULT '{}',
			followed_tournaments INT[] NOT NULL DEFAULT '{}',
			theme                VARCHAR(8) NOT NULL DEFAULT 'light',
			version              BIGINT NOT NULL DEFAULT 1,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT users_email_key UNIQUE (email)
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

func isUniqueEmailViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "users_email_key"
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u        model.User
		provider string
		links    []byte
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
		&u.Interests,
		&links,
		&u.FollowedTeams,
		&u.FollowedTournaments,
		&u.Theme,
		&u.Version,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.AuthProvider = model.AuthProvider(provider)
	if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
		return nil, fmt.Errorf("decoding social_links of %s: %w", u.ID, err)
	}
	u.Normalize()
	return &u, nil
}

// FindByID returns apperror.UserNotFound if no user has that id.
func (r *Repository) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.UserNotFound(id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	return u, nil
}

// FindByEmail matches the stored email exactly.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("postgres: getting user by email: %w", err)
	}
	return u, nil
}

func (r *Repository) Insert(ctx context.Context, user *model.User) error {
	user.Normalize()
	links, err := json.Marshal(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("postgres: encoding social links: %w", err)
	}

	now := time.Now().UTC()
	id := xid.New().String()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14, $14)`,
		id,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.AuthProvider),
		user.Avatar,
		user.Bio,
		user.Location,
		user.Interests,
		string(links),
		user.FollowedTeams,
		user.FollowedTournaments,
		user.Theme,
		now,
	)
	if err != nil {
		if isUniqueEmailViolation(err) {
			return apperror.DuplicateEmail(user.Email)
		}
		return fmt.Errorf("postgres: inserting user: %w", err)
	}

	user.ID = id
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// Update is guarded by the version column, same as the SQLite store.
func (r *Repository) Update(ctx context.Context, user *model.User) error {
	user.Normalize()
	links, err := json.Marshal(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("postgres: encoding social links: %w", err)
	}

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET
			email = $1, name = $2, password_hash = $3, auth_provider = $4, avatar = $5,
			bio = $6, location = $7, interests = $8, social_links = $9,
			followed_teams = $10, followed_tournaments = $11, theme = $12,
			version = version + 1, updated_at = $13
		 WHERE id = $14 AND version = $15`,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.AuthProvider),
		user.Avatar,
		user.Bio,
		user.Location,
		user.Interests,
		string(links),
		user.FollowedTeams,
		user.FollowedTournaments,
		user.Theme,
		now,
		user.ID,
		user.Version,
	)
	if err != nil {
		if isUniqueEmailViolation(err) {
			return apperror.DuplicateEmail(user.Email)
		}
		return fmt.Errorf("postgres: updating user %s: %w", user.ID, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, user.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("postgres: checking user %s: %w", user.ID, err)
		}
		if !exists {
			return apperror.UserNotFound(user.ID)
		}
		return apperror.Conflict("user", user.ID)
	}

	user.Version++
	user.UpdatedAt = now
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting users: %w", err)
	}
	return n, nil
}
