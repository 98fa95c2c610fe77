package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/pkg/api"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseDate reads a wire date. An empty string is the zero Date.
func parseDate(field, s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, models.Invalid(field, "must be a YYYY-MM-DD date, got %q", s)
	}
	return d, nil
}

func parseOptionalDate(field, s string) (*calendar.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatOptionalDate(d *calendar.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:                s.ID,
		Name:              s.Name,
		Kind:              string(s.Kind),
		ExternalRef:       s.Reference(),
		TotalAmount:       money(s.TotalAmount),
		InstallmentCount:  s.InstallmentCount,
		InstallmentAmount: money(s.InstallmentAmount),
		FirstDueDate:      s.FirstDueDate.String(),
		CreatedAt:         s.CreatedAt,
	}
}

func toAPIInstallment(i *models.Installment) *api.Installment {
	return &api.Installment{
		ID:             i.ID,
		SettlementID:   i.SettlementID,
		SequenceNumber: i.SequenceNumber,
		DueDate:        i.DueDate.String(),
		Amount:         money(i.Amount),
		Status:         string(i.Status),
		LedgerEntryID:  deref(i.LedgerEntryID),
		PaidAt:         i.PaidAt,
	}
}

func toAPIInstallments(installments []models.Installment) []*api.Installment {
	out := make([]*api.Installment, len(installments))
	for i := range installments {
		out[i] = toAPIInstallment(&installments[i])
	}
	return out
}

func toAPILedgerEntry(e *models.LedgerEntry) *api.LedgerEntry {
	return &api.LedgerEntry{
		ID:        e.ID,
		Type:      string(e.Type),
		Amount:    money(e.Amount),
		Date:      e.Date.String(),
		Note:      e.Note,
		Method:    string(e.Method),
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
	}
}

func toAPIGoal(g *models.SavingsGoal) *api.SavingsGoal {
	return &api.SavingsGoal{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  money(g.TargetAmount),
		CurrentAmount: money(g.CurrentAmount),
		TargetDate:    formatOptionalDate(g.TargetDate),
		Status:        string(g.Status),
		CreatedAt:     g.CreatedAt,
	}
}

func toAPIReminder(r *models.Reminder) *api.Reminder {
	out := &api.Reminder{
		ID:           r.ID,
		Title:        r.Title,
		Message:      r.Message,
		Severity:     string(r.Severity),
		DueDate:      formatOptionalDate(r.DueDate),
		VisibleFrom:  formatOptionalDate(r.VisibleFrom),
		VisibleUntil: formatOptionalDate(r.VisibleUntil),
		CreatedAt:    r.CreatedAt,
	}
	if r.DismissedAt != nil {
		out.DismissedAt = r.DismissedAt.Unix()
	}
	return out
}

func toAPIAlert(a *models.Alert) *api.Alert {
	return &api.Alert{
		Source:      string(a.Source),
		SourceID:    a.SourceID,
		Title:       a.Title,
		Message:     a.Message,
		Severity:    string(a.Severity),
		DueDate:     a.DueDate.String(),
		DaysUntil:   a.DaysUntil,
		Dismissible: a.Dismissible,
	}
}
