package store

import (
	"context"
	"fmt"
	"time"

	"rosterly/internal/models"
)

func (s *MySQL) Enqueue(ctx context.Context, invitationID, lastError string, nextAttemptAt time.Time) error {
	query := `INSERT INTO propagation_retries (invitation_id, attempts, last_error, state, next_attempt_at, created_at)
		VALUES (?, 1, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, invitationID, lastError, models.RetryPending, nextAttemptAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("enqueue propagation retry for %s: %w", invitationID, err)
	}
	return nil
}

func (s *MySQL) Due(ctx context.Context, now time.Time, limit int) ([]models.PropagationRetry, error) {
	query := `SELECT id, invitation_id, attempts, last_error, state, next_attempt_at, created_at
		FROM propagation_retries
		WHERE state = ? AND next_attempt_at <= ?
		ORDER BY next_attempt_at
		LIMIT ?`
	rows, err := s.DB.QueryContext(ctx, query, models.RetryPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due propagation retries: %w", err)
	}
	defer rows.Close()

	var retries []models.PropagationRetry
	for rows.Next() {
		var r models.PropagationRetry
		if err := rows.Scan(&r.ID, &r.InvitationID, &r.Attempts, &r.LastError,
			&r.State, &r.NextAttemptAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan propagation retry row: %w", err)
		}
		retries = append(retries, r)
	}
	return retries, rows.Err()
}

func (s *MySQL) RecordFailure(ctx context.Context, id int64, attempts int, lastError string, nextAttemptAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE propagation_retries
		SET attempts = ?, last_error = ?, next_attempt_at = ?
		WHERE id = ?
	`, attempts, lastError, nextAttemptAt, id)
	if err != nil {
		return fmt.Errorf("record propagation failure %d: %w", id, err)
	}
	return nil
}

func (s *MySQL) MarkResolved(ctx context.Context, id int64) error {
	_, err := s.DB.ExecContext(ctx,
		"UPDATE propagation_retries SET state = ? WHERE id = ?", models.RetryResolved, id)
	if err != nil {
		return fmt.Errorf("resolve propagation retry %d: %w", id, err)
	}
	return nil
}

func (s *MySQL) MarkEscalated(ctx context.Context, id int64, lastError string) error {
	_, err := s.DB.ExecContext(ctx,
		"UPDATE propagation_retries SET state = ?, last_error = ? WHERE id = ?",
		models.RetryEscalated, lastError, id)
	if err != nil {
		return fmt.Errorf("escalate propagation retry %d: %w", id, err)
	}
	return nil
}
