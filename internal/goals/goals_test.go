package goals

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
	"github.com/mmynk/tillbook/internal/storage/sqlite"
)

const scope = "store-a"

var clock = calendar.FixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

func newStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	dir, err := os.MkdirTemp("", "tillbook-goals-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newGoal(t *testing.T, svc *Service, target int64) *models.SavingsGoal {
	t.Helper()
	g := &models.SavingsGoal{ScopeID: scope, Name: "Espresso machine", TargetAmount: decimal.NewFromInt(target)}
	if err := svc.Create(context.Background(), g); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return g
}

func adjust(goalID string, action models.GoalAction, amount int64) Adjustment {
	return Adjustment{
		ScopeID: scope,
		GoalID:  goalID,
		Action:  action,
		Amount:  decimal.NewFromInt(amount),
		Actor:   "alice",
	}
}

// failingLedger makes the ledger write after the increment fail.
type failingLedger struct {
	*sqlite.SQLiteStore
	err error
}

func (f failingLedger) CreateLedgerEntry(context.Context, *models.LedgerEntry) error { return f.err }

// countingStore counts atomic increments.
type countingStore struct {
	*sqlite.SQLiteStore
	increments int
}

func (c *countingStore) IncrementGoalBalance(ctx context.Context, scopeID, goalID string, delta decimal.Decimal) (*models.SavingsGoal, error) {
	c.increments++
	return c.SQLiteStore.IncrementGoalBalance(ctx, scopeID, goalID, delta)
}

func TestCompletedGoalDoesNotReopen(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, clock)
	ctx := context.Background()
	g := newGoal(t, svc, 100)

	res, err := svc.Adjust(ctx, adjust(g.ID, models.GoalDeposit, 100))
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if res.Goal.Status != models.GoalCompleted {
		t.Fatalf("status after deposit = %s, want completed", res.Goal.Status)
	}

	res, err = svc.Adjust(ctx, adjust(g.ID, models.GoalWithdraw, 30))
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !res.Goal.CurrentAmount.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance = %s, want 70", res.Goal.CurrentAmount)
	}
	if res.Goal.Status != models.GoalCompleted {
		t.Errorf("status after withdraw = %s, want completed", res.Goal.Status)
	}
}

func TestAdjustWritesSignedLedgerEntries(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, clock)
	ctx := context.Background()
	g := newGoal(t, svc, 500)

	dep, err := svc.Adjust(ctx, adjust(g.ID, models.GoalDeposit, 80))
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if dep.Entry.Type != models.EntrySavingsDeposit || !dep.Entry.Amount.Equal(decimal.NewFromInt(-80)) {
		t.Errorf("deposit entry = %s %s, want savings_deposit -80", dep.Entry.Type, dep.Entry.Amount)
	}
	if dep.Entry.Method != models.MethodCash {
		t.Errorf("default method = %s, want cash", dep.Entry.Method)
	}
	if dep.Entry.Date.String() != "2024-03-01" {
		t.Errorf("entry date = %s, want 2024-03-01", dep.Entry.Date)
	}

	wd, err := svc.Adjust(ctx, adjust(g.ID, models.GoalWithdraw, 30))
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if wd.Entry.Type != models.EntrySavingsWithdrawal || !wd.Entry.Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("withdraw entry = %s %s, want savings_withdrawal 30", wd.Entry.Type, wd.Entry.Amount)
	}

	stored, err := store.GetLedgerEntry(ctx, scope, wd.Entry.ID)
	if err != nil {
		t.Fatalf("GetLedgerEntry failed: %v", err)
	}
	if stored.CreatedBy != "alice" {
		t.Errorf("CreatedBy = %q, want alice", stored.CreatedBy)
	}
}

func TestWithdrawAboveBalanceRejectedBeforeIncrement(t *testing.T) {
	store := &countingStore{SQLiteStore: newStore(t)}
	svc := NewService(store, clock)
	g := newGoal(t, svc, 100)

	_, err := svc.Adjust(context.Background(), adjust(g.ID, models.GoalWithdraw, 1))
	if !errors.Is(err, storage.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if store.increments != 0 {
		t.Errorf("increment called %d times for a rejected withdrawal", store.increments)
	}
}

func TestConcurrentWithdrawalsCannotOverdraw(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, clock)
	ctx := context.Background()
	g := newGoal(t, svc, 1000)
	if _, err := svc.Adjust(ctx, adjust(g.ID, models.GoalDeposit, 100)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	// Every withdrawal passes the advisory check against the same balance;
	// only the atomic bound decides.
	const workers = 5
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Adjust(ctx, adjust(g.ID, models.GoalWithdraw, 40))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, storage.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 2 {
		t.Errorf("%d withdrawals of 40 succeeded from 100, want 2", succeeded)
	}
	got, err := store.GetGoal(ctx, scope, g.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if !got.CurrentAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("balance = %s, want 20", got.CurrentAmount)
	}
}

func TestLedgerFailureAfterIncrementReportsDivergence(t *testing.T) {
	base := newStore(t)
	ledgerErr := errors.New("ledger unavailable")
	svc := NewService(failingLedger{SQLiteStore: base, err: ledgerErr}, clock)
	g := newGoal(t, NewService(base, clock), 100)

	_, err := svc.Adjust(context.Background(), adjust(g.ID, models.GoalDeposit, 40))
	var div *DivergenceError
	if !errors.As(err, &div) {
		t.Fatalf("expected DivergenceError, got %v", err)
	}
	if !errors.Is(err, ledgerErr) {
		t.Error("DivergenceError should wrap the ledger error")
	}
	if !div.Balance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("divergent balance = %s, want 40", div.Balance)
	}

	got, _ := base.GetGoal(context.Background(), scope, g.ID)
	if !got.CurrentAmount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance should stay incremented, got %s", got.CurrentAmount)
	}
}

func TestAdjustValidation(t *testing.T) {
	svc := NewService(newStore(t), clock)

	tests := []struct {
		name string
		adj  Adjustment
	}{
		{"unknown action", Adjustment{ScopeID: scope, GoalID: "g", Action: "transfer", Amount: decimal.NewFromInt(1)}},
		{"zero amount", Adjustment{ScopeID: scope, GoalID: "g", Action: models.GoalDeposit, Amount: decimal.Zero}},
		{"negative amount", Adjustment{ScopeID: scope, GoalID: "g", Action: models.GoalWithdraw, Amount: decimal.NewFromInt(-5)}},
		{"unknown method", Adjustment{ScopeID: scope, GoalID: "g", Action: models.GoalDeposit, Amount: decimal.NewFromInt(5), Method: "card", Actor: "alice"}},
		{"missing actor", Adjustment{ScopeID: scope, GoalID: "g", Action: models.GoalDeposit, Amount: decimal.NewFromInt(5)}},
		{"blank actor", Adjustment{ScopeID: scope, GoalID: "g", Action: models.GoalDeposit, Amount: decimal.NewFromInt(5), Actor: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *models.ValidationError
			if _, err := svc.Adjust(context.Background(), tt.adj); !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	if _, err := svc.Adjust(context.Background(), adjust("missing", models.GoalDeposit, 5)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDepositAboveMaximumRejected(t *testing.T) {
	store := &countingStore{SQLiteStore: newStore(t)}
	svc := NewService(store, clock)
	ctx := context.Background()
	g := newGoal(t, svc, 100)

	// 2^64 cents would wrap to zero if it reached the store.
	a := adjust(g.ID, models.GoalDeposit, 0)
	a.Amount = decimal.RequireFromString("184467440737095516.16")

	var verr *models.ValidationError
	if _, err := svc.Adjust(ctx, a); !errors.As(err, &verr) || verr.Field != "amount" {
		t.Fatalf("expected amount ValidationError, got %v", err)
	}
	if store.increments != 0 {
		t.Errorf("increment called %d times for a rejected deposit", store.increments)
	}

	got, err := store.GetGoal(ctx, scope, g.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if !got.CurrentAmount.IsZero() || got.Status != models.GoalActive {
		t.Errorf("goal changed by rejected deposit: %s %s", got.CurrentAmount, got.Status)
	}
}
