// Package api defines the wire messages of the tillbook.v1 RPC surface.
//
// Messages are plain structs carried by JSONCodec. Money is read as a JSON
// string or number and written as a string with two decimals. Dates are
// "YYYY-MM-DD" strings; an empty string means no date.
package api

import "github.com/shopspring/decimal"

// Settlement is a repayment plan as returned to clients.
type Settlement struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	ExternalRef       string `json:"external_ref,omitempty"`
	TotalAmount       string `json:"total_amount"`
	InstallmentCount  int    `json:"installment_count"`
	InstallmentAmount string `json:"installment_amount"`
	FirstDueDate      string `json:"first_due_date"`
	CreatedAt         int64  `json:"created_at"`
}

// Installment is one scheduled payment. ID and SettlementID are empty in
// previews.
type Installment struct {
	ID             string `json:"id,omitempty"`
	SettlementID   string `json:"settlement_id,omitempty"`
	SequenceNumber int    `json:"sequence_number"`
	DueDate        string `json:"due_date"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
	LedgerEntryID  string `json:"ledger_entry_id,omitempty"`
	PaidAt         int64  `json:"paid_at,omitempty"`
}

// LedgerEntry is a signed money movement.
type LedgerEntry struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Note      string `json:"note"`
	Method    string `json:"method"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

// SavingsGoal is a named target balance.
type SavingsGoal struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	TargetDate    string `json:"target_date,omitempty"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at"`
}

// Reminder is a user-created notification.
type Reminder struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Message      string `json:"message,omitempty"`
	Severity     string `json:"severity"`
	DueDate      string `json:"due_date,omitempty"`
	VisibleFrom  string `json:"visible_from,omitempty"`
	VisibleUntil string `json:"visible_until,omitempty"`
	DismissedAt  int64  `json:"dismissed_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// Alert is one entry of the alert feed. DueDate is empty for undated
// reminders.
type Alert struct {
	Source      string `json:"source"`
	SourceID    string `json:"source_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Severity    string `json:"severity"`
	DueDate     string `json:"due_date,omitempty"`
	DaysUntil   int    `json:"days_until"`
	Dismissible bool   `json:"dismissible"`
}

type CreateSettlementRequest struct {
	Name              string          `json:"name"`
	Kind              string          `json:"kind"`
	ExternalRef       string          `json:"external_ref,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InstallmentCount  int             `json:"installment_count"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	FirstDueDate      string          `json:"first_due_date"`
}

type CreateSettlementResponse struct {
	Settlement   *Settlement    `json:"settlement"`
	Installments []*Installment `json:"installments"`
}

type GetSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type GetSettlementResponse struct {
	Settlement   *Settlement    `json:"settlement"`
	Installments []*Installment `json:"installments"`
}

// PreviewScheduleRequest takes the same fields as CreateSettlementRequest.
type PreviewScheduleRequest CreateSettlementRequest

type PreviewScheduleResponse struct {
	Installments []*Installment `json:"installments"`
}

type PayInstallmentRequest struct {
	InstallmentID string `json:"installment_id"`
	Method        string `json:"method"`
}

type PayInstallmentResponse struct {
	Installment *Installment `json:"installment"`
	LedgerEntry *LedgerEntry `json:"ledger_entry"`
}

type UndoPaymentRequest struct {
	InstallmentID string `json:"installment_id"`
	// DeleteLedgerEntry also removes the expense entry the payment wrote.
	DeleteLedgerEntry bool `json:"delete_ledger_entry,omitempty"`
}

type UndoPaymentResponse struct {
	Installment *Installment `json:"installment"`
	// UnlinkedLedgerEntryID is the entry the installment pointed at, if any.
	UnlinkedLedgerEntryID string `json:"unlinked_ledger_entry_id,omitempty"`
}

type CreateGoalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	TargetDate   string          `json:"target_date,omitempty"`
}

type CreateGoalResponse struct {
	Goal *SavingsGoal `json:"goal"`
}

type AdjustGoalRequest struct {
	GoalID string          `json:"goal_id"`
	Action string          `json:"action"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
}

type AdjustGoalResponse struct {
	Goal        *SavingsGoal `json:"goal"`
	LedgerEntry *LedgerEntry `json:"ledger_entry"`
}

type ListAlertsRequest struct{}

type ListAlertsResponse struct {
	Alerts []*Alert `json:"alerts"`
}

type CreateReminderRequest struct {
	Title        string `json:"title"`
	Message      string `json:"message,omitempty"`
	Severity     string `json:"severity,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	VisibleFrom  string `json:"visible_from,omitempty"`
	VisibleUntil string `json:"visible_until,omitempty"`
}

type CreateReminderResponse struct {
	Reminder *Reminder `json:"reminder"`
}

type DismissReminderRequest struct {
	ReminderID string `json:"reminder_id"`
}

type DismissReminderResponse struct{}
