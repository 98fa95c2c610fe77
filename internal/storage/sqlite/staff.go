package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
)

// UpsertStaffMember inserts or replaces the payroll fields of a staff member.
func (s *SQLiteStore) UpsertStaffMember(ctx context.Context, m *models.StaffMember) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff (id, scope_id, name, start_date, active) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     name = excluded.name, start_date = excluded.start_date, active = excluded.active
		 WHERE staff.scope_id = excluded.scope_id`,
		m.ID, m.ScopeID, m.Name, dateValue(m.StartDate), m.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert staff member: %w", err)
	}

	return nil
}

// ListActiveStaff returns active staff of a scope, ordered by name.
func (s *SQLiteStore) ListActiveStaff(ctx context.Context, scopeID string) ([]models.StaffMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scope_id, name, start_date, active FROM staff
		 WHERE scope_id = ? AND active = 1
		 ORDER BY name`,
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []models.StaffMember
	for rows.Next() {
		var m models.StaffMember
		var start calendar.Date
		if err := rows.Scan(&m.ID, &m.ScopeID, &m.Name, &start, &m.Active); err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		m.StartDate = datePtr(start)
		staff = append(staff, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff: %w", err)
	}

	return staff, nil
}
