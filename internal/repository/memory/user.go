// Package memory is an in-process UserRepository. It backs tests and the
// zero-config development server; everything is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore keeps users in a map guarded by a RWMutex, with a secondary
// index on email.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string // email -> id
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, apperror.UserNotFound(id)
	}
	return u.Clone(), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return s.byID[id].Clone(), nil
}

func (s *UserStore) Insert(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return apperror.DuplicateEmail(user.Email)
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Version = 1

	s.byID[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) Update(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[user.ID]
	if !ok {
		return apperror.UserNotFound(user.ID)
	}
	if stored.Version != user.Version {
		return apperror.Conflict("user", user.ID)
	}
	if owner, taken := s.byEmail[user.Email]; taken && owner != user.ID {
		return apperror.DuplicateEmail(user.Email)
	}

	user.Version++
	user.UpdatedAt = time.Now()
	user.CreatedAt = stored.CreatedAt

	if stored.Email != user.Email {
		delete(s.byEmail, stored.Email)
		s.byEmail[user.Email] = user.ID
	}
	s.byID[user.ID] = user.Clone()
	return nil
}

func (s *UserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
