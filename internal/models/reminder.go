package models

import (
	"time"

	"github.com/mmynk/tillbook/internal/calendar"
)

// Severity is the urgency tier of an alert.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func (s Severity) Valid() bool {
	return s == SeverityDanger || s == SeverityWarning || s == SeverityInfo
}

// Rank orders severities for display: danger first.
func (s Severity) Rank() int {
	switch s {
	case SeverityDanger:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Reminder is a user-created notification. Once DismissedAt is set it is
// never cleared.
type Reminder struct {
	ID       string
	ScopeID  string
	Title    string
	Message  string
	Severity Severity
	DueDate  *calendar.Date

	// VisibleFrom and VisibleUntil bound the days the reminder is shown.
	// Either may be nil for an open-ended window.
	VisibleFrom  *calendar.Date
	VisibleUntil *calendar.Date

	DismissedAt *time.Time
	CreatedAt   int64
}

// VisibleOn reports whether the reminder should be shown on day.
func (r *Reminder) VisibleOn(day calendar.Date) bool {
	if r.DismissedAt != nil {
		return false
	}
	if r.VisibleFrom != nil && day.Before(*r.VisibleFrom) {
		return false
	}
	if r.VisibleUntil != nil && day.After(*r.VisibleUntil) {
		return false
	}
	return true
}
