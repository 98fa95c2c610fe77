package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
)

// LedgerEntryType classifies a money movement.
type LedgerEntryType string

const (
	EntryIncome            LedgerEntryType = "income"
	EntryExpense           LedgerEntryType = "expense"
	EntrySavingsDeposit    LedgerEntryType = "savings_deposit"
	EntrySavingsWithdrawal LedgerEntryType = "savings_withdrawal"
)

func (t LedgerEntryType) Valid() bool {
	switch t {
	case EntryIncome, EntryExpense, EntrySavingsDeposit, EntrySavingsWithdrawal:
		return true
	}
	return false
}

// PaymentMethod is where the money moved: the cash drawer or the bank.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodBank PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodBank
}

// LedgerEntry is an append-mostly record of money movement.
// Amount is signed: negative amounts leave the drawer.
type LedgerEntry struct {
	ID      string
	ScopeID string
	Type    LedgerEntryType
	Amount  decimal.Decimal
	Date    calendar.Date
	Note    string
	Method  PaymentMethod

	// CreatedBy is the actor that recorded the entry, kept for audit.
	CreatedBy string

	CreatedAt int64
}
