package models

import "github.com/mmynk/tillbook/internal/calendar"

// StaffMember holds the payroll fields needed to project monthly pay dates.
// Staff are managed elsewhere; this engine only reads them.
type StaffMember struct {
	ID        string
	ScopeID   string
	Name      string
	StartDate *calendar.Date
	Active    bool
}
