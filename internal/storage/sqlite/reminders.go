package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

const reminderColumns = `id, scope_id, title, message, severity, due_date, visible_from, visible_until, dismissed_at, created_at`

// CreateReminder persists a new reminder.
func (s *SQLiteStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = s.now()
	}

	var dismissed any
	if r.DismissedAt != nil {
		dismissed = r.DismissedAt.Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ScopeID, r.Title, r.Message, string(r.Severity),
		dateValue(r.DueDate), dateValue(r.VisibleFrom), dateValue(r.VisibleUntil),
		dismissed, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	return nil
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	r := &models.Reminder{}
	var severity string
	var due, from, until calendar.Date
	var dismissed sql.NullInt64

	if err := row.Scan(&r.ID, &r.ScopeID, &r.Title, &r.Message, &severity,
		&due, &from, &until, &dismissed, &r.CreatedAt); err != nil {
		return nil, err
	}

	r.Severity = models.Severity(severity)
	r.DueDate = datePtr(due)
	r.VisibleFrom = datePtr(from)
	r.VisibleUntil = datePtr(until)
	if dismissed.Valid {
		at := time.Unix(dismissed.Int64, 0)
		r.DismissedAt = &at
	}
	return r, nil
}

// GetReminder retrieves a reminder by ID within a scope.
func (s *SQLiteStore) GetReminder(ctx context.Context, scopeID, reminderID string) (*models.Reminder, error) {
	r, err := scanReminder(s.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND scope_id = ?`,
		reminderID, scopeID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reminder %s: %w", reminderID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// ListUndismissedReminders returns reminders that have not been dismissed.
// Visibility windows are applied by the caller against the business date.
func (s *SQLiteStore) ListUndismissedReminders(ctx context.Context, scopeID string) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE scope_id = ? AND dismissed_at IS NULL
		 ORDER BY created_at`,
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}

// DismissReminder marks a reminder dismissed. An already dismissed reminder
// keeps its original timestamp.
func (s *SQLiteStore) DismissReminder(ctx context.Context, scopeID, reminderID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET dismissed_at = ?
		 WHERE id = ? AND scope_id = ? AND dismissed_at IS NULL`,
		at.Unix(), reminderID, scopeID,
	)
	if err != nil {
		return fmt.Errorf("failed to dismiss reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check dismissed reminder: %w", err)
	}
	if n == 0 {
		// Already dismissed is fine; missing is not.
		if _, err := s.GetReminder(ctx, scopeID, reminderID); err != nil {
			return err
		}
	}

	return nil
}
