package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestIncrementGoalBalanceSendsCentsInOneStatement(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "scope_id", "name", "target_amount", "current_amount", "target_date", "status", "created_at"}).
		AddRow("goal-1", scopeA, "New oven", int64(10000), int64(12550), nil, "completed", int64(1))
	mock.ExpectQuery(`UPDATE savings_goals`).
		WithArgs(int64(2550), "goal-1", scopeA).
		WillReturnRows(rows)

	got, err := store.IncrementGoalBalance(context.Background(), scopeA, "goal-1", dec("25.50"))
	if err != nil {
		t.Fatalf("IncrementGoalBalance failed: %v", err)
	}
	if !got.CurrentAmount.Equal(dec("125.50")) || got.Status != models.GoalCompleted {
		t.Errorf("got %s %s, want 125.50 completed", got.CurrentAmount, got.Status)
	}
	if got.TargetDate != nil {
		t.Errorf("TargetDate = %v, want nil", got.TargetDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIncrementGoalBalanceSurfacesDriverError(t *testing.T) {
	store, mock := newMockStore(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`UPDATE savings_goals`).WillReturnError(boom)

	_, err := store.IncrementGoalBalance(context.Background(), scopeA, "goal-1", dec("-5"))
	if !errors.Is(err, boom) {
		t.Errorf("expected driver error to be wrapped, got %v", err)
	}
	if errors.Is(err, storage.ErrInsufficientBalance) {
		t.Error("driver error must not be reported as insufficient balance")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateInstallmentsRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO installments`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	installments := []models.Installment{
		{SettlementID: "s-1", SequenceNumber: 1, DueDate: calendar.MustParse("2024-01-31"), Amount: dec("10")},
		{SettlementID: "s-1", SequenceNumber: 2, DueDate: calendar.MustParse("2024-02-29"), Amount: dec("10")},
	}
	err := store.CreateInstallments(context.Background(), scopeA, installments)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected ErrConnDone, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkInstallmentPaidDistinguishesPaidFromMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE installments SET status = 'paid'`).
		WithArgs("entry-1", int64(42), "inst-1", scopeA).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM installments i WHERE i.id = \?`).
		WithArgs("inst-1", scopeA).
		WillReturnRows(sqlmock.NewRows([]string{"id", "settlement_id", "sequence_number", "due_date", "amount", "status", "ledger_entry_id", "paid_at"}).
			AddRow("inst-1", "s-1", 1, "2024-01-31", int64(1000), "paid", "entry-0", int64(7)))

	err := store.MarkInstallmentPaid(context.Background(), scopeA, "inst-1", "entry-1", 42)
	if !errors.Is(err, storage.ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
