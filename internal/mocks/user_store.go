package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// UserStore is an in-memory store.UserStore. Error fields, when set,
// force the corresponding method to fail.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	CreateErr            error
	GetByEmailErr        error
	UpdateRoleErr        error
	MarkSetupCompleteErr error
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*domain.User)}
}

var _ store.UserStore = (*UserStore)(nil)

// Seed inserts users directly, bypassing uniqueness checks.
func (s *UserStore) Seed(users ...*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		copied := *u
		s.users[u.ID] = &copied
	}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.GetByEmailErr != nil {
		return nil, s.GetByEmailErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *UserStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	if s.UpdateRoleErr != nil {
		return s.UpdateRoleErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (s *UserStore) MarkSetupComplete(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	if s.MarkSetupCompleteErr != nil {
		return s.MarkSetupCompleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.SetupComplete = true
	if role != "" {
		u.Role = role
	}
	return nil
}

func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore { return s }
