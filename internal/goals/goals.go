// Package goals moves money between the cash drawer and savings goals.
package goals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/metrics"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

// Store is the subset of storage the goal service needs.
type Store interface {
	storage.GoalStore
	storage.LedgerStore
}

// DivergenceError is returned when the goal balance changed but the matching
// ledger entry could not be written. The balance is not rolled back.
type DivergenceError struct {
	GoalID  string
	Balance decimal.Decimal
	Err     error
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("savings goal %s moved to %s but ledger entry not written: %v",
		e.GoalID, e.Balance, e.Err)
}

func (e *DivergenceError) Unwrap() error { return e.Err }

// Adjustment is a request to deposit into or withdraw from a goal.
type Adjustment struct {
	ScopeID string
	GoalID  string
	Action  models.GoalAction
	Amount  decimal.Decimal
	Method  models.PaymentMethod
	Actor   string
}

func (a Adjustment) validate() error {
	if !a.Action.Valid() {
		return models.Invalid("action", "must be %q or %q, got %q", models.GoalDeposit, models.GoalWithdraw, a.Action)
	}
	if err := models.ValidatePositiveAmount("amount", a.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(a.Actor) == "" {
		return models.Invalid("actor", "is required")
	}
	if a.Method == "" {
		return nil
	}
	if !a.Method.Valid() {
		return models.Invalid("method", "must be %q or %q, got %q", models.MethodCash, models.MethodBank, a.Method)
	}
	return nil
}

// Result is the outcome of a successful Adjust.
type Result struct {
	Goal  models.SavingsGoal
	Entry models.LedgerEntry
}

// Service adjusts goal balances.
type Service struct {
	store Store
	clock calendar.Clock
}

// NewService creates a goal Service.
func NewService(store Store, clock calendar.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// Create validates and persists a new goal.
func (s *Service) Create(ctx context.Context, g *models.SavingsGoal) error {
	if strings.TrimSpace(g.ScopeID) == "" {
		return models.Invalid("scope_id", "is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return models.Invalid("name", "is required")
	}
	if err := models.ValidatePositiveAmount("target_amount", g.TargetAmount); err != nil {
		return err
	}
	g.Name = strings.TrimSpace(g.Name)
	g.CurrentAmount = decimal.Zero
	g.Status = models.GoalActive
	return s.store.CreateGoal(ctx, g)
}

// Adjust applies a deposit or withdrawal.
//
// The balance changes through the store's atomic increment, which also
// refuses to go below zero, so concurrent adjustments cannot lose updates or
// overdraw. A ledger entry is written afterwards: a deposit takes cash out
// of the drawer (negative amount), a withdrawal puts it back. If the
// increment fails nothing is written.
func (s *Service) Adjust(ctx context.Context, a Adjustment) (*Result, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if a.Method == "" {
		a.Method = models.MethodCash
	}

	goal, err := s.store.GetGoal(ctx, a.ScopeID, a.GoalID)
	if err != nil {
		return nil, err
	}

	delta := a.Amount
	entryType := models.EntrySavingsDeposit
	if a.Action == models.GoalWithdraw {
		// Advisory only: the increment re-checks the bound atomically.
		if a.Amount.GreaterThan(goal.CurrentAmount) {
			return nil, fmt.Errorf("withdraw %s from goal %s holding %s: %w",
				a.Amount, goal.ID, goal.CurrentAmount, storage.ErrInsufficientBalance)
		}
		delta = a.Amount.Neg()
		entryType = models.EntrySavingsWithdrawal
	}

	updated, err := s.store.IncrementGoalBalance(ctx, a.ScopeID, a.GoalID, delta)
	if err != nil {
		return nil, err
	}
	if updated.Status == models.GoalCompleted && goal.Status == models.GoalActive {
		slog.Info("Savings goal completed",
			"goal_id", updated.ID,
			"scope_id", a.ScopeID,
			"balance", updated.CurrentAmount.String(),
		)
	}

	entry := models.LedgerEntry{
		ScopeID:   a.ScopeID,
		Type:      entryType,
		Amount:    delta.Neg(),
		Date:      calendar.Today(s.clock),
		Note:      fmt.Sprintf("Savings %s: %s", a.Action, updated.Name),
		Method:    a.Method,
		CreatedBy: a.Actor,
	}
	if err := s.store.CreateLedgerEntry(ctx, &entry); err != nil {
		slog.Warn("Savings goal balance and ledger diverged",
			"goal_id", updated.ID,
			"scope_id", a.ScopeID,
			"delta", delta.String(),
			"error", err,
		)
		metrics.RecordConsistencyGap(metrics.GapGoalDivergence)
		return nil, &DivergenceError{GoalID: updated.ID, Balance: updated.CurrentAmount, Err: err}
	}

	return &Result{Goal: *updated, Entry: entry}, nil
}
