package sqlconnect

import "database/sql"

// pending_flag on invitations is 1 while PENDING and NULL afterwards. MySQL
// allows repeated NULLs in a unique key, so uq_pending_invitation rejects a
// second PENDING row per (user, organization) while terminal history rows
// accumulate freely.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		normalized_name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'USER',
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_user_email (email),
		KEY idx_user_normalized_name (normalized_name)
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id CHAR(36) PRIMARY KEY,
		registry_number VARCHAR(100) NOT NULL,
		name VARCHAR(100) NOT NULL,
		normalized_name VARCHAR(100) NOT NULL,
		contact_email VARCHAR(255) NOT NULL,
		company_size INT NOT NULL,
		year_founded INT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_org_registry_number (registry_number),
		KEY idx_org_normalized_name (normalized_name),
		KEY idx_org_year_size (year_founded, company_size)
	)`,
	`CREATE TABLE IF NOT EXISTS organization_members (
		id CHAR(36) PRIMARY KEY,
		organization_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uq_member (organization_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		id CHAR(36) PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		organization_id CHAR(36) NOT NULL,
		message VARCHAR(250) NOT NULL,
		status VARCHAR(20) NOT NULL,
		pending_flag TINYINT NULL,
		expiration_date DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uq_pending_invitation (user_id, organization_id, pending_flag),
		KEY idx_invitation_status (status),
		KEY idx_invitation_expiration (expiration_date)
	)`,
	`CREATE TABLE IF NOT EXISTS propagation_retries (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		invitation_id CHAR(36) NOT NULL,
		attempts INT NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL,
		state VARCHAR(20) NOT NULL DEFAULT 'pending',
		next_attempt_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_retry_due (state, next_attempt_at)
	)`,
}

func ensureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
