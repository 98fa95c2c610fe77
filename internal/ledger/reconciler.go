// Package ledger reconciles installment payments against the cash ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/metrics"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

// Store is the subset of storage the Reconciler writes to.
type Store interface {
	storage.SettlementStore
	storage.LedgerStore
}

// DanglingEntryError is returned when the ledger entry was written but the
// installment could not be marked paid. The entry stays in the ledger and
// the installment stays pending; nothing repairs this automatically.
type DanglingEntryError struct {
	EntryID       string
	InstallmentID string
	Err           error
}

func (e *DanglingEntryError) Error() string {
	return fmt.Sprintf("ledger entry %s written but installment %s not marked paid: %v",
		e.EntryID, e.InstallmentID, e.Err)
}

func (e *DanglingEntryError) Unwrap() error { return e.Err }

// Payment is the result of a successful Pay.
type Payment struct {
	Installment models.Installment
	Entry       models.LedgerEntry
}

// Reconciler pays installments by writing an expense entry and flipping the
// installment to paid.
type Reconciler struct {
	store Store
	clock calendar.Clock
}

// NewReconciler creates a Reconciler.
func NewReconciler(store Store, clock calendar.Clock) *Reconciler {
	return &Reconciler{store: store, clock: clock}
}

// Pay records the payment of a pending installment. The two writes are not
// transactional: the ledger entry goes first, and the installment update
// only runs if it succeeded.
func (r *Reconciler) Pay(ctx context.Context, scopeID, installmentID string, method models.PaymentMethod, actor string) (*Payment, error) {
	if !method.Valid() {
		return nil, models.Invalid("method", "must be %q or %q, got %q", models.MethodCash, models.MethodBank, method)
	}
	if strings.TrimSpace(actor) == "" {
		return nil, models.Invalid("actor", "is required")
	}

	inst, err := r.store.GetInstallment(ctx, scopeID, installmentID)
	if err != nil {
		return nil, err
	}
	if inst.Status != models.InstallmentPending {
		return nil, fmt.Errorf("installment %s: %w", installmentID, storage.ErrNotPending)
	}

	settlement, err := r.store.GetSettlement(ctx, scopeID, inst.SettlementID)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	entry := models.LedgerEntry{
		ScopeID:   scopeID,
		Type:      models.EntryExpense,
		Amount:    inst.Amount.Abs().Neg(),
		Date:      calendar.BusinessDate(now),
		Note:      PaymentNote(settlement, inst.SequenceNumber),
		Method:    method,
		CreatedBy: actor,
	}
	if err := r.store.CreateLedgerEntry(ctx, &entry); err != nil {
		return nil, err
	}

	if err := r.store.MarkInstallmentPaid(ctx, scopeID, inst.ID, entry.ID, now.Unix()); err != nil {
		slog.Warn("Installment payment left a dangling ledger entry",
			"installment_id", inst.ID,
			"ledger_entry_id", entry.ID,
			"scope_id", scopeID,
			"error", err,
		)
		metrics.RecordConsistencyGap(metrics.GapDanglingEntry)
		return nil, &DanglingEntryError{EntryID: entry.ID, InstallmentID: inst.ID, Err: err}
	}

	inst.Status = models.InstallmentPaid
	inst.LedgerEntryID = &entry.ID
	inst.PaidAt = now.Unix()
	return &Payment{Installment: *inst, Entry: entry}, nil
}

// Undo sets a paid installment back to pending. The ledger entry it pointed
// at is deleted only when deleteEntry is set, as a separate write after the
// reset; if that delete fails the installment is already pending.
// It returns the id of the entry that was unlinked, if any.
func (r *Reconciler) Undo(ctx context.Context, scopeID, installmentID string, deleteEntry bool) (*string, error) {
	entryID, err := r.store.ResetInstallment(ctx, scopeID, installmentID)
	if err != nil {
		return nil, err
	}
	if !deleteEntry || entryID == nil {
		return entryID, nil
	}

	if err := r.store.DeleteLedgerEntry(ctx, scopeID, *entryID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return entryID, fmt.Errorf("installment %s reset but ledger entry %s not deleted: %w", installmentID, *entryID, err)
	}
	return entryID, nil
}

// PaymentNote describes an installment payment in the ledger, e.g.
// "Income tax 2023 (TAX-17) - installment 2/4".
func PaymentNote(s *models.Settlement, sequence int) string {
	var b strings.Builder
	b.WriteString(s.Name)
	if ref := s.Reference(); ref != "" {
		fmt.Fprintf(&b, " (%s)", ref)
	}
	fmt.Fprintf(&b, " - installment %d/%d", sequence, s.InstallmentCount)
	return b.String()
}
