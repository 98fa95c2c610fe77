// Package schedule turns a settlement definition into its installment plan
// and persists both, undoing the settlement if the installments cannot be
// written.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/metrics"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

// MaxInstallments caps a schedule at 50 years of monthly payments.
const MaxInstallments = 600

// Input is a settlement definition as entered by the user.
type Input struct {
	ScopeID           string
	Name              string
	Kind              models.SettlementKind
	ExternalRef       string
	TotalAmount       decimal.Decimal
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
	FirstDueDate      calendar.Date
}

// Validate checks the input before anything is written.
func (in Input) Validate() error {
	if strings.TrimSpace(in.ScopeID) == "" {
		return models.Invalid("scope_id", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.Invalid("name", "is required")
	}
	if !in.Kind.Valid() {
		return models.Invalid("kind", "must be %q or %q, got %q", models.KindSettlement, models.KindLoan, in.Kind)
	}
	if err := models.ValidatePositiveAmount("total_amount", in.TotalAmount); err != nil {
		return err
	}
	if in.InstallmentCount < 1 {
		return models.Invalid("installment_count", "must be a positive integer, got %d", in.InstallmentCount)
	}
	if in.InstallmentCount > MaxInstallments {
		return models.Invalid("installment_count", "must be at most %d, got %d", MaxInstallments, in.InstallmentCount)
	}
	if err := models.ValidatePositiveAmount("installment_amount", in.InstallmentAmount); err != nil {
		return err
	}
	if in.FirstDueDate.IsZero() {
		return models.Invalid("first_due_date", "is required")
	}
	return nil
}

// Build returns the installments for a settlement: sequence numbers 1..count,
// each due AddMonthsClamped(first, k-1) months after the first due date.
// Offsets are taken from the first due date, not chained, so a schedule
// starting on the 31st returns to the 31st in long months.
func Build(settlementID string, first calendar.Date, count int, amount decimal.Decimal) []models.Installment {
	installments := make([]models.Installment, count)
	for i := range installments {
		installments[i] = models.Installment{
			SettlementID:   settlementID,
			SequenceNumber: i + 1,
			DueDate:        calendar.AddMonthsClamped(first, i),
			Amount:         amount,
			Status:         models.InstallmentPending,
		}
	}
	return installments
}

// CompensationError is returned when the installment insert failed and the
// compensating delete of the settlement failed too. The settlement row is
// left behind with no installments.
type CompensationError struct {
	SettlementID string
	Cause        error
	Compensation error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("failed to create installments (%v) and failed to delete settlement %s: %v",
		e.Cause, e.SettlementID, e.Compensation)
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Cause, e.Compensation}
}

// Generator persists settlements together with their schedule.
type Generator struct {
	store storage.SettlementStore
}

// NewGenerator creates a Generator over the given store.
func NewGenerator(store storage.SettlementStore) *Generator {
	return &Generator{store: store}
}

// Preview validates the input and returns the schedule without writing.
func (g *Generator) Preview(in Input) ([]models.Installment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return Build("", in.FirstDueDate, in.InstallmentCount, in.InstallmentAmount), nil
}

// Create inserts the settlement and then its installments. If the
// installments cannot be inserted the settlement is deleted again so no
// settlement exists without a schedule. Nothing is retried.
func (g *Generator) Create(ctx context.Context, in Input) (*models.Settlement, []models.Installment, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	settlement := &models.Settlement{
		ScopeID:           in.ScopeID,
		Name:              strings.TrimSpace(in.Name),
		Kind:              in.Kind,
		TotalAmount:       in.TotalAmount,
		InstallmentCount:  in.InstallmentCount,
		InstallmentAmount: in.InstallmentAmount,
		FirstDueDate:      in.FirstDueDate,
	}
	if ref := strings.TrimSpace(in.ExternalRef); ref != "" {
		settlement.ExternalRef = &ref
	}

	// The schedule total is not checked against TotalAmount; installments are
	// configured independently of it.
	if total := in.InstallmentAmount.Mul(decimal.NewFromInt(int64(in.InstallmentCount))); !total.Equal(in.TotalAmount) {
		slog.Debug("Schedule total differs from settlement total",
			"name", settlement.Name,
			"total_amount", in.TotalAmount.String(),
			"schedule_total", total.String(),
		)
	}

	if err := g.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, nil, err
	}

	installments := Build(settlement.ID, settlement.FirstDueDate, settlement.InstallmentCount, settlement.InstallmentAmount)
	if err := g.store.CreateInstallments(ctx, settlement.ScopeID, installments); err != nil {
		if delErr := g.store.DeleteSettlement(ctx, settlement.ScopeID, settlement.ID); delErr != nil {
			slog.Error("Compensating settlement delete failed",
				"settlement_id", settlement.ID,
				"scope_id", settlement.ScopeID,
				"error", delErr,
			)
			metrics.RecordCompensation(false)
			metrics.RecordConsistencyGap(metrics.GapOrphanSettlement)
			return nil, nil, &CompensationError{SettlementID: settlement.ID, Cause: err, Compensation: delErr}
		}
		slog.Warn("Settlement deleted after installment insert failed",
			"settlement_id", settlement.ID,
			"scope_id", settlement.ScopeID,
			"error", err,
		)
		metrics.RecordCompensation(true)
		return nil, nil, err
	}

	return settlement, installments, nil
}

// IsCompensationFailure reports whether err left an orphan settlement behind.
func IsCompensationFailure(err error) bool {
	var ce *CompensationError
	return errors.As(err, &ce)
}
