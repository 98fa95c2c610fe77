// Package storage provides abstractions for persistent data storage.
//
// Every method takes the owning store's scopeID. A row that exists under a
// different scope is reported as ErrNotFound.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist in the given scope.
	ErrNotFound = errors.New("not found")

	// ErrNotPending is returned when paying an installment that is already paid.
	ErrNotPending = errors.New("installment is not pending")

	// ErrNotPaid is returned when undoing a payment on a pending installment.
	ErrNotPaid = errors.New("installment is not paid")

	// ErrInsufficientBalance is returned when a withdrawal would drive a goal
	// balance below zero.
	ErrInsufficientBalance = errors.New("insufficient goal balance")
)

// SettlementStore persists settlements and their installments.
type SettlementStore interface {
	// CreateSettlement inserts the settlement row only. ID and CreatedAt are
	// populated by the store when empty.
	CreateSettlement(ctx context.Context, s *models.Settlement) error

	// CreateInstallments inserts a batch of installments for one settlement.
	// The batch is all-or-nothing.
	CreateInstallments(ctx context.Context, scopeID string, installments []models.Installment) error

	GetSettlement(ctx context.Context, scopeID, settlementID string) (*models.Settlement, error)

	// DeleteSettlement removes a settlement and, by cascade, its installments.
	DeleteSettlement(ctx context.Context, scopeID, settlementID string) error

	// ListInstallments returns a settlement's installments ordered by sequence number.
	ListInstallments(ctx context.Context, scopeID, settlementID string) ([]models.Installment, error)

	GetInstallment(ctx context.Context, scopeID, installmentID string) (*models.Installment, error)

	// MarkInstallmentPaid flips a pending installment to paid and records the
	// ledger entry. Returns ErrNotPending if it was not pending.
	MarkInstallmentPaid(ctx context.Context, scopeID, installmentID, ledgerEntryID string, paidAt int64) error

	// ResetInstallment sets a paid installment back to pending and clears its
	// ledger entry reference. Returns the cleared entry id, if any, or
	// ErrNotPaid if the installment was still pending.
	ResetInstallment(ctx context.Context, scopeID, installmentID string) (*string, error)

	// ListPendingInstallmentsDue returns pending installments with a due date in
	// [from, to], joined with their settlement's name and reference.
	ListPendingInstallmentsDue(ctx context.Context, scopeID string, from, to calendar.Date) ([]models.InstallmentDue, error)
}

// LedgerStore persists ledger entries.
type LedgerStore interface {
	CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error
	GetLedgerEntry(ctx context.Context, scopeID, entryID string) (*models.LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, scopeID, entryID string) error
}

// GoalStore persists savings goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *models.SavingsGoal) error
	GetGoal(ctx context.Context, scopeID, goalID string) (*models.SavingsGoal, error)

	// IncrementGoalBalance adds delta to the goal balance in a single atomic
	// statement and recomputes the status with models.NextGoalStatus.
	// It returns the goal as it is after the update, or ErrInsufficientBalance
	// if the new balance would be negative (the balance is left unchanged).
	IncrementGoalBalance(ctx context.Context, scopeID, goalID string, delta decimal.Decimal) (*models.SavingsGoal, error)
}

// ReminderStore persists free-form reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, r *models.Reminder) error
	GetReminder(ctx context.Context, scopeID, reminderID string) (*models.Reminder, error)

	// ListUndismissedReminders returns every reminder with no DismissedAt.
	ListUndismissedReminders(ctx context.Context, scopeID string) ([]models.Reminder, error)

	// DismissReminder sets DismissedAt if it is not already set. Dismissing
	// twice keeps the first timestamp.
	DismissReminder(ctx context.Context, scopeID, reminderID string, at time.Time) error
}

// StaffStore reads the payroll roster.
type StaffStore interface {
	UpsertStaffMember(ctx context.Context, m *models.StaffMember) error
	ListActiveStaff(ctx context.Context, scopeID string) ([]models.StaffMember, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	SettlementStore
	LedgerStore
	GoalStore
	ReminderStore
	StaffStore

	// Close releases any resources held by the store.
	Close() error
}
