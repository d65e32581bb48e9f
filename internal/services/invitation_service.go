package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rosterly/internal/models"
	"rosterly/internal/store"
)

// DefaultInvitationExpiry is applied when the caller supplies no expiration
// date.
const DefaultInvitationExpiry = 7 * 24 * time.Hour

// Propagator turns an accepted invitation into a membership record, possibly
// across a service boundary.
type Propagator interface {
	Propagate(ctx context.Context, inv *models.Invitation) error
}

// InvitationService owns the invitation state machine.
type InvitationService struct {
	store      store.InvitationStore
	propagator Propagator
	logger     *logrus.Logger
}

func NewInvitationService(st store.InvitationStore, propagator Propagator, logger *logrus.Logger) *InvitationService {
	return &InvitationService{
		store:      st,
		propagator: propagator,
		logger:     logger,
	}
}

type CreateInvitationInput struct {
	UserID         string     `json:"user_id"`
	OrganizationID string     `json:"organization_id"`
	Message        string     `json:"message"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

// Create persists a new PENDING invitation. A prior REJECTED or EXPIRED
// invitation for the same pair does not block re-invitation; only a live
// PENDING one does.
func (s *InvitationService) Create(ctx context.Context, in CreateInvitationInput) (*models.Invitation, error) {
	if in.UserID == "" || in.OrganizationID == "" {
		return nil, invalidArgument("user_id and organization_id are required")
	}
	if in.Message == "" {
		return nil, invalidArgument("invitation message cannot be blank")
	}
	if utf8.RuneCountInString(in.Message) > models.MaxInvitationMessageLen {
		return nil, invalidArgument("invitation message exceeds %d characters", models.MaxInvitationMessageLen)
	}

	now := time.Now().UTC()
	expiration := now.Add(DefaultInvitationExpiry)
	if in.ExpirationDate != nil {
		if !in.ExpirationDate.After(now) {
			return nil, invalidArgument("expiration date must be in the future")
		}
		expiration = in.ExpirationDate.UTC()
	}

	pending, err := s.store.HasPending(ctx, in.UserID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicatePending
	}

	inv := &models.Invitation{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		OrganizationID: in.OrganizationID,
		Message:        in.Message,
		Status:         models.InvitationPending,
		ExpirationDate: expiration,
		CreatedAt:      now,
	}

	if err := s.store.Insert(ctx, inv); err != nil {
		// The unique key on (user_id, organization_id, pending_flag) is the
		// backstop for two creates racing past the HasPending check.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"invitation_id":   inv.ID,
		"user_id":         inv.UserID,
		"organization_id": inv.OrganizationID,
	}).Info("Invitation created")

	return inv, nil
}

func (s *InvitationService) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	return s.store.GetByID(ctx, id)
}

func (s *InvitationService) List(ctx context.Context, status string) ([]models.Invitation, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, invalidArgument("unknown invitation status %q", status)
	}
	return s.store.List(ctx, status)
}

// TransitionResult carries the updated invitation plus, for transitions to
// ACCEPTED, any non-fatal propagation failure. A non-nil PropagationErr means
// the invitation is ACCEPTED but the membership has not been created yet; the
// failure is already queued for retry.
type TransitionResult struct {
	Invitation     *models.Invitation
	PropagationErr error
}

// Transition moves a PENDING invitation to a terminal status via
// compare-and-swap. Terminal invitations reject every further transition.
func (s *InvitationService) Transition(ctx context.Context, id, newStatus string) (*TransitionResult, error) {
	if !models.ValidStatus(newStatus) || newStatus == models.InvitationPending {
		return nil, invalidArgument("cannot transition an invitation to %q", newStatus)
	}

	if err := s.store.UpdateStatusIfPending(ctx, id, newStatus); err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			inv, lookupErr := s.store.GetByID(ctx, id)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return nil, &InvalidTransitionError{
				InvitationID:  id,
				CurrentStatus: inv.Status,
				Requested:     newStatus,
			}
		}
		return nil, err
	}

	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"invitation_id": id,
		"status":        newStatus,
	}).Info("Invitation transitioned")

	result := &TransitionResult{Invitation: inv}

	if newStatus == models.InvitationAccepted {
		// The status change is already durable; a propagation failure is
		// reported as degraded success, never rolled back.
		if perr := s.propagator.Propagate(ctx, inv); perr != nil {
			s.logger.WithFields(logrus.Fields{
				"invitation_id": id,
				"error":         perr.Error(),
			}).Warn("Acceptance propagation failed, queued for retry")
			result.PropagationErr = perr
		}
	}

	return result, nil
}

// ExpireOldInvitations is the sweep body: every PENDING invitation whose
// expiration has passed is moved to EXPIRED with the same compare-and-swap as
// caller-driven transitions, one row at a time. Rows lost to a concurrent
// accept/reject are skipped, so re-running the sweep is a no-op for them.
// Returns the number of invitations expired.
func (s *InvitationService) ExpireOldInvitations(ctx context.Context) (int, error) {
	pending, err := s.store.List(ctx, models.InvitationPending)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	expired := 0
	for _, inv := range pending {
		if !inv.ExpirationDate.Before(now) {
			continue
		}
		err := s.store.UpdateStatusIfPending(ctx, inv.ID, models.InvitationExpired)
		switch {
		case err == nil:
			expired++
			s.logger.WithFields(logrus.Fields{
				"invitation_id":   inv.ID,
				"user_id":         inv.UserID,
				"organization_id": inv.OrganizationID,
			}).Debug("Invitation expired")
		case errors.Is(err, store.ErrStaleStatus), errors.Is(err, store.ErrNotFound):
			// A concurrent accept/reject won the race; their write stands.
			continue
		default:
			s.logger.WithFields(logrus.Fields{
				"invitation_id": inv.ID,
				"error":         err.Error(),
			}).Error("Failed to expire invitation")
		}
	}

	if expired > 0 {
		s.logger.Infof("Expired %d stale pending invitations", expired)
	}
	return expired, nil
}
