package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"rosterly/internal/models"
	"rosterly/internal/store"
	"rosterly/pkg/utils"
)

const (
	// retryBaseBackoff doubles on every failed attempt: 1m, 2m, 4m, ...
	retryBaseBackoff = time.Minute
	// maxPropagationAttempts bounds retries before a row is escalated for
	// manual intervention.
	maxPropagationAttempts = 6
	// retryBatchSize caps how many due rows one pump run processes.
	retryBatchSize = 50
)

// EscalationNotifier is told when a propagation retry has exhausted its
// attempt budget.
type EscalationNotifier interface {
	NotifyEscalation(inv *models.Invitation, attempts int, lastError string) error
}

// MailEscalationNotifier emails the operator address configured in
// OPERATOR_EMAIL.
type MailEscalationNotifier struct{}

func (MailEscalationNotifier) NotifyEscalation(inv *models.Invitation, attempts int, lastError string) error {
	return utils.SendEscalationEmail(inv.ID, inv.OrganizationID, inv.UserID, attempts, lastError)
}

// AcceptancePropagator bridges accepted invitations to the membership
// admission service. The invitation is the source of truth for "the user said
// yes": a failed AddMember never reverts ACCEPTED, it lands in the durable
// retry queue instead.
type AcceptancePropagator struct {
	members     MembershipCaller
	invitations store.InvitationStore
	retries     store.RetryStore
	notifier    EscalationNotifier
	logger      *logrus.Logger
}

func NewAcceptancePropagator(
	members MembershipCaller,
	invitations store.InvitationStore,
	retries store.RetryStore,
	notifier EscalationNotifier,
	logger *logrus.Logger,
) *AcceptancePropagator {
	return &AcceptancePropagator{
		members:     members,
		invitations: invitations,
		retries:     retries,
		notifier:    notifier,
		logger:      logger,
	}
}

// Propagate issues the admission call for an accepted invitation. AddMember is
// idempotent, so the call is safe to repeat. On any failure (transport error,
// missing organization, CapacityExceeded) the invitation/error pair is queued
// and a PropagationError is returned for the caller's degraded-success
// response. CapacityExceeded is retried too: capacity frees up when members
// are removed.
func (p *AcceptancePropagator) Propagate(ctx context.Context, inv *models.Invitation) error {
	_, err := p.members.AddMember(ctx, inv.OrganizationID, inv.UserID)
	if err == nil {
		return nil
	}

	// The usual failure cause is the caller's context dying mid-call, so the
	// enqueue must not share its cancellation.
	next := time.Now().UTC().Add(backoff(1))
	if qerr := p.retries.Enqueue(context.WithoutCancel(ctx), inv.ID, err.Error(), next); qerr != nil {
		p.logger.WithFields(logrus.Fields{
			"invitation_id": inv.ID,
			"error":         qerr.Error(),
		}).Error("Failed to enqueue propagation retry")
	}

	return &PropagationError{InvitationID: inv.ID, Err: err}
}

// ProcessDueRetries drains the due slice of the retry queue once. It runs
// every minute from the cron scheduler and is also callable directly in tests.
func (p *AcceptancePropagator) ProcessDueRetries(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := p.retries.Due(ctx, now, retryBatchSize)
	if err != nil {
		return err
	}

	for _, r := range due {
		inv, err := p.invitations.GetByID(ctx, r.InvitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// The invitation was administratively removed; nothing left to
				// propagate.
				p.retries.MarkResolved(ctx, r.ID)
				continue
			}
			p.logger.WithFields(logrus.Fields{
				"invitation_id": r.InvitationID,
				"error":         err.Error(),
			}).Error("Failed to load invitation for retry")
			continue
		}

		if _, err := p.members.AddMember(ctx, inv.OrganizationID, inv.UserID); err != nil {
			p.recordFailure(ctx, r, inv, err)
			continue
		}

		if err := p.retries.MarkResolved(ctx, r.ID); err != nil {
			p.logger.WithFields(logrus.Fields{
				"invitation_id": r.InvitationID,
				"error":         err.Error(),
			}).Error("Failed to resolve propagation retry")
			continue
		}
		p.logger.WithFields(logrus.Fields{
			"invitation_id": r.InvitationID,
			"attempts":      r.Attempts + 1,
		}).Info("Propagation retry succeeded")
	}
	return nil
}

func (p *AcceptancePropagator) recordFailure(ctx context.Context, r models.PropagationRetry, inv *models.Invitation, cause error) {
	attempts := r.Attempts + 1
	if attempts >= maxPropagationAttempts {
		if err := p.retries.MarkEscalated(ctx, r.ID, cause.Error()); err != nil {
			p.logger.WithFields(logrus.Fields{
				"invitation_id": r.InvitationID,
				"error":         err.Error(),
			}).Error("Failed to escalate propagation retry")
			return
		}
		p.logger.WithFields(logrus.Fields{
			"invitation_id":   r.InvitationID,
			"organization_id": inv.OrganizationID,
			"user_id":         inv.UserID,
			"attempts":        attempts,
			"last_error":      cause.Error(),
		}).Error("Propagation retries exhausted, needs manual intervention")
		if err := p.notifier.NotifyEscalation(inv, attempts, cause.Error()); err != nil {
			p.logger.Errorf("Failed to send escalation notification for invitation %s: %v", r.InvitationID, err)
		}
		return
	}

	next := time.Now().UTC().Add(backoff(attempts))
	if err := p.retries.RecordFailure(ctx, r.ID, attempts, cause.Error(), next); err != nil {
		p.logger.WithFields(logrus.Fields{
			"invitation_id": r.InvitationID,
			"error":         err.Error(),
		}).Error("Failed to record propagation failure")
		return
	}
	p.logger.WithFields(logrus.Fields{
		"invitation_id": r.InvitationID,
		"attempts":      attempts,
		"next_attempt":  next.Format(time.RFC3339),
		"error":         cause.Error(),
	}).Warn("Propagation retry failed")
}

// backoff returns the delay before the next attempt after `attempts` failures.
func backoff(attempts int) time.Duration {
	return retryBaseBackoff << (attempts - 1)
}
