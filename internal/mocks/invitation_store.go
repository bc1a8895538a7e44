package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// InvitationStore is an in-memory store.InvitationStore. MarkAccepted
// applies the same guarded pending-only transition as the real store.
type InvitationStore struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]*domain.Invitation

	CreateErr error
	DeleteErr error

	// MarkAcceptedHook runs before the transition is attempted; tests
	// use it to interleave a competing writer.
	MarkAcceptedHook func()
}

// NewInvitationStore creates an empty in-memory invitation store.
func NewInvitationStore() *InvitationStore {
	return &InvitationStore{invitations: make(map[uuid.UUID]*domain.Invitation)}
}

var _ store.InvitationStore = (*InvitationStore)(nil)

// Seed inserts invitations directly.
func (s *InvitationStore) Seed(invitations ...*domain.Invitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range invitations {
		copied := *inv
		s.invitations[inv.ID] = &copied
	}
}

// Len reports how many invitation rows exist.
func (s *InvitationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invitations)
}

func (s *InvitationStore) Create(ctx context.Context, inv *domain.Invitation) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *inv
	s.invitations[inv.ID] = &copied
	return nil
}

func (s *InvitationStore) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invitations {
		if inv.Token == token {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, store.ErrInvitationNotFound
}

func (s *InvitationStore) ListPendingByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Invitation{}
	for _, inv := range s.invitations {
		if inv.Email == email && inv.Status == domain.InvitationPending {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InvitationStore) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	if s.MarkAcceptedHook != nil {
		s.MarkAcceptedHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[id]
	if !ok {
		return store.ErrInvitationNotFound
	}
	if inv.Status != domain.InvitationPending {
		return store.ErrInvitationNotPending
	}
	inv.Status = domain.InvitationAccepted
	return nil
}

func (s *InvitationStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invitations[id]; !ok {
		return store.ErrInvitationNotFound
	}
	delete(s.invitations, id)
	return nil
}

func (s *InvitationStore) WithTx(tx *sql.Tx) store.InvitationStore { return s }
