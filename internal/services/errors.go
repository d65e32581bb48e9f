package services

import (
	"errors"
	"fmt"
)

// ErrDuplicatePending is returned when a PENDING invitation already exists for
// the same (user, organization) pair.
var ErrDuplicatePending = errors.New("an active pending invitation already exists for this user and organization")

// InvalidArgumentError reports a request that fails validation before any
// state is touched.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

func invalidArgument(format string, args ...interface{}) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a transition attempt against an invitation
// that is no longer PENDING.
type InvalidTransitionError struct {
	InvitationID  string
	CurrentStatus string
	Requested     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invitation %s is %s and cannot transition to %s",
		e.InvitationID, e.CurrentStatus, e.Requested)
}

// CapacityError reports a roster that is already at its company size limit.
type CapacityError struct {
	OrganizationID string
	Limit          int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("organization %s has reached its member limit (%d members)", e.OrganizationID, e.Limit)
}

// PropagationError reports a failed acceptance propagation. It is non-fatal to
// the invitation: the ACCEPTED status stands and the failure is queued for
// retry.
type PropagationError struct {
	InvitationID string
	Err          error
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("membership propagation failed for invitation %s: %v", e.InvitationID, e.Err)
}

func (e *PropagationError) Unwrap() error {
	return e.Err
}
