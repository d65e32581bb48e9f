package models

import "time"

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleUser    = "USER"
)

const (
	UserStatusPending     = "PENDING"
	UserStatusActive      = "ACTIVE"
	UserStatusDeactivated = "DEACTIVATED"
	UserStatusDeleted     = "DELETED"
)

type User struct {
	ID             string    `json:"id,omitempty" db:"id"`
	Email          string    `json:"email,omitempty" db:"email"`
	FullName       string    `json:"full_name,omitempty" db:"full_name"`
	NormalizedName string    `json:"normalized_name,omitempty" db:"normalized_name"`
	Role           string    `json:"role,omitempty" db:"role"`
	Status         string    `json:"status,omitempty" db:"status"`
	CreatedAt      time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
