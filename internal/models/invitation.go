package models

import "time"

// Invitation statuses. PENDING is the only state that accepts a transition;
// the other three are terminal.
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationRejected = "REJECTED"
	InvitationExpired  = "EXPIRED"
)

// MaxInvitationMessageLen bounds the invitation message, counted in runes.
const MaxInvitationMessageLen = 250

type Invitation struct {
	ID             string    `json:"id,omitempty" db:"id"`
	UserID         string    `json:"user_id,omitempty" db:"user_id"`
	OrganizationID string    `json:"organization_id,omitempty" db:"organization_id"`
	Message        string    `json:"message,omitempty" db:"message"`
	Status         string    `json:"status,omitempty" db:"status"`
	ExpirationDate time.Time `json:"expiration_date,omitempty" db:"expiration_date"`
	CreatedAt      time.Time `json:"created_at,omitempty" db:"created_at"`
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status string) bool {
	return status == InvitationAccepted || status == InvitationRejected || status == InvitationExpired
}

// ValidStatus reports whether s is one of the four invitation statuses.
func ValidStatus(s string) bool {
	return s == InvitationPending || IsTerminal(s)
}
