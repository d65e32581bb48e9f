package store

import (
	"context"
	"errors"
	"time"

	"rosterly/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleStatus is returned when a conditional status update finds the
	// stored status already changed by a concurrent writer.
	ErrStaleStatus = errors.New("status changed concurrently")
)

// InvitationStore persists invitation records. Status transitions go through
// UpdateStatusIfPending, a compare-and-swap conditioned on the stored status
// still being PENDING, so racing writers resolve to exactly one winner.
type InvitationStore interface {
	Insert(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, id string) (*models.Invitation, error)
	// List returns invitations filtered by status, or all when status is empty.
	List(ctx context.Context, status string) ([]models.Invitation, error)
	HasPending(ctx context.Context, userID, organizationID string) (bool, error)
	UpdateStatusIfPending(ctx context.Context, id, newStatus string) error
}

// MembershipStore persists the member roster and exposes the organization
// capacity view the admission check needs.
type MembershipStore interface {
	GetOrganization(ctx context.Context, organizationID string) (*models.Organization, error)
	GetMember(ctx context.Context, organizationID, userID string) (*models.OrganizationMember, error)
	CountMembers(ctx context.Context, organizationID string) (int, error)
	InsertMember(ctx context.Context, m *models.OrganizationMember) error
	DeleteMember(ctx context.Context, organizationID, userID string) error
	ListMemberIDs(ctx context.Context, organizationID string) ([]string, error)
}

// RetryStore is the durable queue of failed acceptance propagations.
type RetryStore interface {
	Enqueue(ctx context.Context, invitationID, lastError string, nextAttemptAt time.Time) error
	// Due returns pending rows whose next attempt time has passed, oldest first.
	Due(ctx context.Context, now time.Time, limit int) ([]models.PropagationRetry, error)
	RecordFailure(ctx context.Context, id int64, attempts int, lastError string, nextAttemptAt time.Time) error
	MarkResolved(ctx context.Context, id int64) error
	MarkEscalated(ctx context.Context, id int64, lastError string) error
}
