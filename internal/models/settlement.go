package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
)

// SettlementKind distinguishes tax arrangements from loans.
type SettlementKind string

const (
	KindSettlement SettlementKind = "settlement"
	KindLoan       SettlementKind = "loan"
)

func (k SettlementKind) Valid() bool {
	return k == KindSettlement || k == KindLoan
}

// Settlement is a structured repayment plan broken into installments.
// It is immutable once created, except for deletion.
type Settlement struct {
	// ID is the unique identifier (UUID format).
	ID string

	// ScopeID is the store (tenant) that owns the settlement.
	ScopeID string

	Name string
	Kind SettlementKind

	// ExternalRef is the tax office or bank reference, when there is one.
	ExternalRef *string

	TotalAmount       decimal.Decimal
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
	FirstDueDate      calendar.Date

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// Reference returns ExternalRef or "" when unset.
func (s *Settlement) Reference() string {
	if s.ExternalRef == nil {
		return ""
	}
	return *s.ExternalRef
}

// InstallmentStatus is pending until a payment is reconciled.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
)

func (s InstallmentStatus) Valid() bool {
	return s == InstallmentPending || s == InstallmentPaid
}

// Installment is one scheduled payment of a Settlement.
type Installment struct {
	ID           string
	SettlementID string

	// SequenceNumber runs 1..InstallmentCount within the settlement.
	SequenceNumber int

	DueDate calendar.Date
	Amount  decimal.Decimal
	Status  InstallmentStatus

	// LedgerEntryID points at the expense entry that paid this installment.
	// The entry does not point back.
	LedgerEntryID *string

	// PaidAt is the Unix timestamp of the payment, 0 while pending.
	PaidAt int64
}

// InstallmentDue is a pending installment joined with the fields of its
// settlement needed to describe it in an alert.
type InstallmentDue struct {
	Installment
	SettlementName   string
	ExternalRef      *string
	InstallmentCount int
}
