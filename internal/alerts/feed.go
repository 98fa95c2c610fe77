package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

// Store is what the feed reads from.
type Store interface {
	ListPendingInstallmentsDue(ctx context.Context, scopeID string, from, to calendar.Date) ([]models.InstallmentDue, error)
	storage.StaffStore
	storage.ReminderStore
}

// Feed builds the merged alert list on demand. It holds no state between
// calls; every List recomputes from the store.
type Feed struct {
	store Store
	clock calendar.Clock
}

// NewFeed creates a Feed.
func NewFeed(store Store, clock calendar.Clock) *Feed {
	return &Feed{store: store, clock: clock}
}

// List returns the alerts for a scope, most urgent first.
func (f *Feed) List(ctx context.Context, scopeID string) ([]models.Alert, error) {
	today := calendar.Today(f.clock)

	installments, err := f.installmentAlerts(ctx, scopeID, today)
	if err != nil {
		return nil, err
	}
	payroll, err := f.payrollAlerts(ctx, scopeID, today)
	if err != nil {
		return nil, err
	}
	reminders, err := f.reminderAlerts(ctx, scopeID, today)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.Alert, 0, len(installments)+len(payroll)+len(reminders))
	alerts = append(alerts, installments...)
	alerts = append(alerts, payroll...)
	alerts = append(alerts, reminders...)
	Sort(alerts)
	return alerts, nil
}

func (f *Feed) installmentAlerts(ctx context.Context, scopeID string, today calendar.Date) ([]models.Alert, error) {
	due, err := f.store.ListPendingInstallmentsDue(ctx, scopeID, today.AddDays(-LookbackDays), today.AddDays(LookaheadDays))
	if err != nil {
		return nil, err
	}

	var alerts []models.Alert
	for _, d := range due {
		severity, ok := ClassifyInstallment(d.DueDate, today)
		if !ok {
			continue
		}
		days := calendar.DayDifference(d.DueDate, today)

		msg := fmt.Sprintf("Installment %d/%d of %s %s", d.SequenceNumber, d.InstallmentCount, d.Amount.StringFixed(2), describeDays(days))
		if d.ExternalRef != nil {
			msg = fmt.Sprintf("%s (ref %s)", msg, *d.ExternalRef)
		}
		alerts = append(alerts, models.Alert{
			Source:    models.SourceInstallment,
			SourceID:  d.ID,
			Title:     d.SettlementName,
			Message:   msg,
			Severity:  severity,
			DueDate:   d.DueDate,
			DaysUntil: days,
		})
	}
	return alerts, nil
}

func (f *Feed) payrollAlerts(ctx context.Context, scopeID string, today calendar.Date) ([]models.Alert, error) {
	staff, err := f.store.ListActiveStaff(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	var alerts []models.Alert
	for _, m := range staff {
		if !m.Active || m.StartDate == nil {
			continue
		}
		// Nobody is paid before they start.
		if m.StartDate.After(today) {
			continue
		}
		pay := ProjectPayDate(*m.StartDate, today)
		severity, ok := ClassifyPayDate(pay, today)
		if !ok {
			continue
		}
		days := calendar.DayDifference(pay, today)
		alerts = append(alerts, models.Alert{
			Source:    models.SourcePayroll,
			SourceID:  m.ID,
			Title:     "Payday: " + m.Name,
			Message:   "Salary " + describeDays(days),
			Severity:  severity,
			DueDate:   pay,
			DaysUntil: days,
		})
	}
	return alerts, nil
}

func (f *Feed) reminderAlerts(ctx context.Context, scopeID string, today calendar.Date) ([]models.Alert, error) {
	reminders, err := f.store.ListUndismissedReminders(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	var alerts []models.Alert
	for _, r := range reminders {
		if !r.VisibleOn(today) {
			continue
		}
		a := models.Alert{
			Source:      models.SourceReminder,
			SourceID:    r.ID,
			Title:       r.Title,
			Message:     r.Message,
			Severity:    r.Severity,
			Dismissible: true,
		}
		if r.DueDate != nil {
			a.DueDate = *r.DueDate
			a.DaysUntil = calendar.DayDifference(*r.DueDate, today)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

func describeDays(days int) string {
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days > 1:
		return fmt.Sprintf("due in %d days", days)
	case days == -1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", -days)
	}
}

// Dismiss marks a reminder dismissed. Dismissal is permanent; dismissing an
// already dismissed reminder succeeds and keeps the first timestamp.
// Installment and payroll alerts cannot be dismissed.
func (f *Feed) Dismiss(ctx context.Context, scopeID, reminderID string) error {
	return f.store.DismissReminder(ctx, scopeID, reminderID, f.clock.Now())
}

// CreateReminder validates and stores a new reminder.
func (f *Feed) CreateReminder(ctx context.Context, r *models.Reminder) error {
	if strings.TrimSpace(r.ScopeID) == "" {
		return models.Invalid("scope_id", "is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return models.Invalid("title", "is required")
	}
	if r.Severity == "" {
		r.Severity = models.SeverityInfo
	}
	if !r.Severity.Valid() {
		return models.Invalid("severity", "must be danger, warning or info, got %q", r.Severity)
	}
	if r.VisibleFrom != nil && r.VisibleUntil != nil && r.VisibleUntil.Before(*r.VisibleFrom) {
		return models.Invalid("visible_until", "must not be before visible_from")
	}
	r.Title = strings.TrimSpace(r.Title)
	r.DismissedAt = nil
	return f.store.CreateReminder(ctx, r)
}
