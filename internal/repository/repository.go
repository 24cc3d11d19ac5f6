// Package repository declares the storage contracts the service layer depends on.
//
// The service never imports a concrete store. server.New picks one of the
// implementations (memory, sqlite, postgres) from config and hands it over as
// a UserRepository, so swapping storage is a config change.
package repository

import (
	"context"

	"github.com/sakif/robotics-league/internal/model"
)

// UserRepository is the user table.
//
// CONTRACT SHARED BY ALL IMPLEMENTATIONS:
//   - FindByID returns apperror.UserNotFound for an unknown id.
//   - FindByEmail returns an error matching apperror.ErrNotFound for an
//     unknown email. Emails are compared exactly; callers normalise first.
//   - Insert assigns ID, CreatedAt, UpdatedAt and Version=1, and fails with
//     apperror.DuplicateEmail if the email is taken.
//   - Update writes every field of user, but only if user.Version still
//     matches the stored version. On success Version is incremented in place.
//     A stale version fails with apperror.ErrConflict, an unknown id with
//     apperror.UserNotFound, a taken email with apperror.DuplicateEmail.
//   - Returned users are copies owned by the caller.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int, error)
}
