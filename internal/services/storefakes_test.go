package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rosterly/internal/models"
	"rosterly/internal/store"
)

// In-memory stores mirroring the MySQL semantics: pending uniqueness on
// insert, compare-and-swap on status updates, duplicate detection on the
// member pair.

type fakeInvitationStore struct {
	mu          sync.Mutex
	invitations map[string]*models.Invitation
}

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{invitations: make(map[string]*models.Invitation)}
}

func (f *fakeInvitationStore) Insert(_ context.Context, inv *models.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.invitations {
		if existing.UserID == inv.UserID && existing.OrganizationID == inv.OrganizationID &&
			existing.Status == models.InvitationPending {
			return store.ErrDuplicate
		}
	}
	clone := *inv
	f.invitations[inv.ID] = &clone
	return nil
}

func (f *fakeInvitationStore) GetByID(_ context.Context, id string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *inv
	return &clone, nil
}

func (f *fakeInvitationStore) List(_ context.Context, status string) ([]models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invitation
	for _, inv := range f.invitations {
		if status == "" || inv.Status == status {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationStore) HasPending(_ context.Context, userID, organizationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.UserID == userID && inv.OrganizationID == organizationID &&
			inv.Status == models.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationStore) UpdateStatusIfPending(_ context.Context, id, newStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return store.ErrNotFound
	}
	if inv.Status != models.InvitationPending {
		return store.ErrStaleStatus
	}
	inv.Status = newStatus
	return nil
}

type fakeMembershipStore struct {
	mu      sync.Mutex
	orgs    map[string]*models.Organization
	members map[string]*models.OrganizationMember // key: orgID + "/" + userID
}

func newFakeMembershipStore() *fakeMembershipStore {
	return &fakeMembershipStore{
		orgs:    make(map[string]*models.Organization),
		members: make(map[string]*models.OrganizationMember),
	}
}

func (f *fakeMembershipStore) addOrganization(id string, companySize int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[id] = &models.Organization{ID: id, Name: id, CompanySize: companySize}
}

func (f *fakeMembershipStore) GetOrganization(_ context.Context, organizationID string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[organizationID]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *org
	return &clone, nil
}

func (f *fakeMembershipStore) GetMember(_ context.Context, organizationID, userID string) (*models.OrganizationMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[organizationID+"/"+userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (f *fakeMembershipStore) CountMembers(_ context.Context, organizationID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.members {
		if m.OrganizationID == organizationID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMembershipStore) InsertMember(_ context.Context, m *models.OrganizationMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := m.OrganizationID + "/" + m.UserID
	if _, ok := f.members[key]; ok {
		return store.ErrDuplicate
	}
	clone := *m
	f.members[key] = &clone
	return nil
}

func (f *fakeMembershipStore) DeleteMember(_ context.Context, organizationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := organizationID + "/" + userID
	if _, ok := f.members[key]; !ok {
		return store.ErrNotFound
	}
	delete(f.members, key)
	return nil
}

func (f *fakeMembershipStore) ListMemberIDs(_ context.Context, organizationID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.members {
		if m.OrganizationID == organizationID {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

type fakeRetryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.PropagationRetry
}

func newFakeRetryStore() *fakeRetryStore {
	return &fakeRetryStore{rows: make(map[int64]*models.PropagationRetry)}
}

func (f *fakeRetryStore) Enqueue(_ context.Context, invitationID, lastError string, nextAttemptAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.rows[f.nextID] = &models.PropagationRetry{
		ID:            f.nextID,
		InvitationID:  invitationID,
		Attempts:      1,
		LastError:     lastError,
		State:         models.RetryPending,
		NextAttemptAt: nextAttemptAt,
		CreatedAt:     time.Now().UTC(),
	}
	return nil
}

func (f *fakeRetryStore) Due(_ context.Context, now time.Time, limit int) ([]models.PropagationRetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PropagationRetry
	for _, r := range f.rows {
		if r.State == models.RetryPending && !r.NextAttemptAt.After(now) && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRetryStore) RecordFailure(_ context.Context, id int64, attempts int, lastError string, nextAttemptAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.rows[id]
	r.Attempts = attempts
	r.LastError = lastError
	r.NextAttemptAt = nextAttemptAt
	return nil
}

func (f *fakeRetryStore) MarkResolved(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].State = models.RetryResolved
	return nil
}

func (f *fakeRetryStore) MarkEscalated(_ context.Context, id int64, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].State = models.RetryEscalated
	f.rows[id].LastError = lastError
	return nil
}

func (f *fakeRetryStore) row(id int64) models.PropagationRetry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rows[id]
}

// stubPropagator records calls and returns a configured error.
type stubPropagator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubPropagator) Propagate(_ context.Context, inv *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, inv.ID)
	return s.err
}

func (s *stubPropagator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// stubCaller fails a configured number of times before succeeding.
type stubCaller struct {
	mu        sync.Mutex
	failures  int
	callCount int
	err       error
}

func (s *stubCaller) AddMember(_ context.Context, organizationID, userID string) (*models.OrganizationMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callCount++
	if s.failures != 0 {
		if s.failures > 0 {
			s.failures--
		}
		return nil, s.err
	}
	return &models.OrganizationMember{
		ID:             "member-1",
		OrganizationID: organizationID,
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

type stubNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubNotifier) NotifyEscalation(inv *models.Invitation, attempts int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, inv.ID)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
