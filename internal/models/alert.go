package models

import "github.com/mmynk/tillbook/internal/calendar"

// AlertSource names where an alert was derived from.
type AlertSource string

const (
	SourceInstallment AlertSource = "installment"
	SourcePayroll     AlertSource = "payroll"
	SourceReminder    AlertSource = "reminder"
)

// Alert is one entry of the merged alert feed. Installment and payroll alerts
// are recomputed on every read; only reminder alerts are Dismissible.
type Alert struct {
	Source   AlertSource
	SourceID string
	Title    string
	Message  string
	Severity Severity

	// DueDate is zero for undated reminders.
	DueDate calendar.Date

	// DaysUntil is DueDate minus the business date, 0 when undated.
	DaysUntil int

	Dismissible bool
}
