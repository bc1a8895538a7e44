package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

type membershipKey struct {
	userID uuid.UUID
	orgID  uuid.UUID
}

// OrganizationStore is an in-memory store.OrganizationStore.
type OrganizationStore struct {
	mu          sync.Mutex
	orgs        map[uuid.UUID]*domain.Organization
	memberships map[membershipKey]*domain.Membership

	CreateErr    error
	AddMemberErr error

	// AddMemberHook runs before the insert is attempted; tests use it
	// to interleave a competing writer.
	AddMemberHook func()
}

// NewOrganizationStore creates an empty in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		orgs:        make(map[uuid.UUID]*domain.Organization),
		memberships: make(map[membershipKey]*domain.Membership),
	}
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// Seed inserts organizations and memberships directly.
func (s *OrganizationStore) Seed(orgs []*domain.Organization, memberships []*domain.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orgs {
		copied := *o
		s.orgs[o.ID] = &copied
	}
	for _, m := range memberships {
		copied := *m
		s.memberships[membershipKey{m.UserID, m.OrganizationID}] = &copied
	}
}

func (s *OrganizationStore) Create(ctx context.Context, org *domain.Organization) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *org
	s.orgs[org.ID] = &copied
	return nil
}

func (s *OrganizationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orgs[id]
	if !ok {
		return nil, store.ErrOrganizationNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *OrganizationStore) AddMember(ctx context.Context, m *domain.Membership) error {
	if s.AddMemberHook != nil {
		s.AddMemberHook()
	}
	if s.AddMemberErr != nil {
		return s.AddMemberErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey{m.UserID, m.OrganizationID}
	if _, ok := s.memberships[key]; ok {
		return store.ErrMemberExists
	}
	copied := *m
	s.memberships[key] = &copied
	return nil
}

func (s *OrganizationStore) GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[membershipKey{userID, organizationID}]
	if !ok {
		return nil, store.ErrMembershipNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *OrganizationStore) HasAdmin(ctx context.Context, userID, organizationID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orgs[organizationID]; ok && o.OwnerID == userID {
		return true, nil
	}
	if m, ok := s.memberships[membershipKey{userID, organizationID}]; ok && m.IsAdmin() {
		return true, nil
	}
	return false, nil
}

// RemoveMember drops a membership; used to simulate an inviter losing
// admin rights between invite and redemption.
func (s *OrganizationStore) RemoveMember(userID, organizationID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships, membershipKey{userID, organizationID})
}

func (s *OrganizationStore) WithTx(tx *sql.Tx) store.OrganizationStore { return s }
