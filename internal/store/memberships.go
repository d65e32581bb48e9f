package store

import (
	"context"
	"database/sql"
	"fmt"

	"rosterly/internal/models"
)

func (s *MySQL) GetOrganization(ctx context.Context, organizationID string) (*models.Organization, error) {
	var org models.Organization
	query := `SELECT id, registry_number, name, normalized_name, contact_email, company_size, year_founded, created_at, updated_at
		FROM organizations WHERE id = ?`
	err := s.DB.QueryRowContext(ctx, query, organizationID).Scan(
		&org.ID, &org.RegistryNumber, &org.Name, &org.NormalizedName, &org.ContactEmail,
		&org.CompanySize, &org.YearFounded, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get organization %s: %w", organizationID, err)
	}
	return &org, nil
}

func (s *MySQL) GetMember(ctx context.Context, organizationID, userID string) (*models.OrganizationMember, error) {
	var m models.OrganizationMember
	query := `SELECT id, organization_id, user_id, created_at
		FROM organization_members WHERE organization_id = ? AND user_id = ?`
	err := s.DB.QueryRowContext(ctx, query, organizationID, userID).Scan(
		&m.ID, &m.OrganizationID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member %s/%s: %w", organizationID, userID, err)
	}
	return &m, nil
}

func (s *MySQL) CountMembers(ctx context.Context, organizationID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM organization_members WHERE organization_id = ?", organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members of %s: %w", organizationID, err)
	}
	return count, nil
}

func (s *MySQL) InsertMember(ctx context.Context, m *models.OrganizationMember) error {
	query := `INSERT INTO organization_members (id, organization_id, user_id, created_at)
		VALUES (?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, m.ID, m.OrganizationID, m.UserID, m.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert member %s/%s: %w", m.OrganizationID, m.UserID, err)
	}
	return nil
}

func (s *MySQL) DeleteMember(ctx context.Context, organizationID, userID string) error {
	result, err := s.DB.ExecContext(ctx,
		"DELETE FROM organization_members WHERE organization_id = ? AND user_id = ?", organizationID, userID)
	if err != nil {
		return fmt.Errorf("delete member %s/%s: %w", organizationID, userID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member %s/%s: %w", organizationID, userID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) ListMemberIDs(ctx context.Context, organizationID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT user_id FROM organization_members WHERE organization_id = ? ORDER BY created_at", organizationID)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", organizationID, err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
