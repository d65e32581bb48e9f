package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rosterly/internal/models"
	"rosterly/internal/store"
)

// MembershipCaller is the admission operation the acceptance propagator
// depends on. It is satisfied both by MembershipService (in-process) and by
// MembershipClient (over HTTP).
type MembershipCaller interface {
	AddMember(ctx context.Context, organizationID, userID string) (*models.OrganizationMember, error)
}

// MembershipService owns the member roster and enforces the organization
// capacity invariant.
type MembershipService struct {
	store  store.MembershipStore
	logger *logrus.Logger

	// mu guards orgLocks; each organization gets its own mutex so that the
	// capacity check-then-insert is serialized per organization while
	// different organizations admit members in parallel. Entries are never
	// reclaimed, so the map grows with the number of distinct organizations
	// admitted through this process, one mutex each.
	mu       sync.Mutex
	orgLocks map[string]*sync.Mutex
}

func NewMembershipService(st store.MembershipStore, logger *logrus.Logger) *MembershipService {
	return &MembershipService{
		store:    st,
		logger:   logger,
		orgLocks: make(map[string]*sync.Mutex),
	}
}

func (s *MembershipService) lockOrganization(organizationID string) func() {
	s.mu.Lock()
	lock, ok := s.orgLocks[organizationID]
	if !ok {
		lock = &sync.Mutex{}
		s.orgLocks[organizationID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// AddMember admits a user to an organization's roster. It is idempotent: an
// existing (organization, user) pair is returned as-is, never treated as a
// conflict. The capacity check and insert run under the per-organization lock,
// with the unique key on (organization_id, user_id) as the backstop.
func (s *MembershipService) AddMember(ctx context.Context, organizationID, userID string) (*models.OrganizationMember, error) {
	if organizationID == "" || userID == "" {
		return nil, invalidArgument("organization_id and user_id are required")
	}

	unlock := s.lockOrganization(organizationID)
	defer unlock()

	existing, err := s.store.GetMember(ctx, organizationID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	org, err := s.store.GetOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountMembers(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if count >= org.CompanySize {
		return nil, &CapacityError{OrganizationID: organizationID, Limit: org.CompanySize}
	}

	member := &models.OrganizationMember{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.InsertMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Another writer inserted the same pair; idempotency says return it.
			return s.store.GetMember(ctx, organizationID, userID)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"user_id":         userID,
		"member_count":    count + 1,
		"company_size":    org.CompanySize,
	}).Info("Member added")

	return member, nil
}

func (s *MembershipService) RemoveMember(ctx context.Context, organizationID, userID string) error {
	if organizationID == "" || userID == "" {
		return invalidArgument("organization_id and user_id are required")
	}
	if err := s.store.DeleteMember(ctx, organizationID, userID); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"user_id":         userID,
	}).Info("Member removed")
	return nil
}

// ListMembers returns the user ids on the organization's roster.
func (s *MembershipService) ListMembers(ctx context.Context, organizationID string) ([]string, error) {
	if _, err := s.store.GetOrganization(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.store.ListMemberIDs(ctx, organizationID)
}
