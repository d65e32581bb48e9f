package store

import (
	"context"
	"database/sql"
	"fmt"

	"rosterly/internal/models"
)

// pending_flag is 1 while the invitation is PENDING and NULL afterwards, so the
// UNIQUE KEY (user_id, organization_id, pending_flag) rejects a second pending
// row for the same pair while leaving terminal history rows unconstrained.
func (s *MySQL) Insert(ctx context.Context, inv *models.Invitation) error {
	query := `INSERT INTO invitations
		(id, user_id, organization_id, message, status, pending_flag, expiration_date, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query,
		inv.ID, inv.UserID, inv.OrganizationID, inv.Message, inv.Status, inv.ExpirationDate, inv.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (s *MySQL) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	var inv models.Invitation
	query := `SELECT id, user_id, organization_id, message, status, expiration_date, created_at
		FROM invitations WHERE id = ?`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.UserID, &inv.OrganizationID, &inv.Message, &inv.Status, &inv.ExpirationDate, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invitation %s: %w", id, err)
	}
	return &inv, nil
}

func (s *MySQL) List(ctx context.Context, status string) ([]models.Invitation, error) {
	query := `SELECT id, user_id, organization_id, message, status, expiration_date, created_at
		FROM invitations`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.OrganizationID, &inv.Message,
			&inv.Status, &inv.ExpirationDate, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation row: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (s *MySQL) HasPending(ctx context.Context, userID, organizationID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM invitations WHERE user_id = ? AND organization_id = ? AND status = ?
	)`
	err := s.DB.QueryRowContext(ctx, query, userID, organizationID, models.InvitationPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending invitation: %w", err)
	}
	return exists, nil
}

// UpdateStatusIfPending is the per-invitation compare-and-swap: the UPDATE is
// conditioned on the stored status, and RowsAffected distinguishes the winner
// from a racer that found the row already transitioned.
func (s *MySQL) UpdateStatusIfPending(ctx context.Context, id, newStatus string) error {
	result, err := s.DB.ExecContext(ctx, `
		UPDATE invitations
		SET status = ?, pending_flag = NULL
		WHERE id = ? AND status = ?
	`, newStatus, id, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("update invitation %s status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invitation %s status: %w", id, err)
	}
	if affected == 0 {
		// Either the row does not exist or a concurrent writer got there first.
		var current string
		err := s.DB.QueryRowContext(ctx, "SELECT status FROM invitations WHERE id = ?", id).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reload invitation %s status: %w", id, err)
		}
		return ErrStaleStatus
	}
	return nil
}
