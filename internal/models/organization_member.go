package models

import "time"

type OrganizationMember struct {
	ID             string    `json:"id,omitempty" db:"id"`
	OrganizationID string    `json:"organization_id,omitempty" db:"organization_id"`
	UserID         string    `json:"user_id,omitempty" db:"user_id"`
	CreatedAt      time.Time `json:"created_at,omitempty" db:"created_at"`
}
