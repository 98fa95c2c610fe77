// Package models defines the domain rows of the obligation engine.
//
// # Entities
//
//   - Settlement: a repayment plan (tax arrangement or loan) that owns its Installments
//   - Installment: one scheduled payment, pending until reconciled against the ledger
//   - LedgerEntry: a signed money movement in the store's cash ledger
//   - SavingsGoal: a target balance funded by deposits and withdrawals
//   - Reminder: a free-form notification with an optional visibility window
//   - StaffMember: the payroll fields needed to project pay dates
//
// Alert is derived on every read and never stored.
//
// # Conventions
//
//  1. Every row carries a ScopeID (the owning store); relationships use ID strings, not pointers.
//  2. Money is decimal.Decimal with at most two fractional digits.
//  3. Status fields are closed string enums with a Valid method.
//  4. Nullable columns are pointers.
package models
