package models

import "time"

// Retry-queue states for acceptance propagation. A row starts pending, is
// resolved once AddMember succeeds, and is escalated for manual intervention
// once the attempt budget is exhausted.
const (
	RetryPending   = "pending"
	RetryResolved  = "resolved"
	RetryEscalated = "escalated"
)

type PropagationRetry struct {
	ID            int64     `json:"id,omitempty" db:"id"`
	InvitationID  string    `json:"invitation_id,omitempty" db:"invitation_id"`
	Attempts      int       `json:"attempts,omitempty" db:"attempts"`
	LastError     string    `json:"last_error,omitempty" db:"last_error"`
	State         string    `json:"state,omitempty" db:"state"`
	NextAttemptAt time.Time `json:"next_attempt_at,omitempty" db:"next_attempt_at"`
	CreatedAt     time.Time `json:"created_at,omitempty" db:"created_at"`
}
