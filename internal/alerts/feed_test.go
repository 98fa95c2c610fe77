package alerts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/schedule"
	"github.com/mmynk/tillbook/internal/storage"
	"github.com/mmynk/tillbook/internal/storage/sqlite"
)

const scope = "store-a"

func newStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	dir, err := os.MkdirTemp("", "tillbook-alerts-*")
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

// seedMonthly creates a settlement whose installments fall on the given day
// of consecutive months starting at first.
func seedMonthly(t *testing.T, store *sqlite.SQLiteStore, scopeID, name, first string, count int) []models.Installment {
	t.Helper()
	_, installments, err := schedule.NewGenerator(store).Create(context.Background(), schedule.Input{
		ScopeID:           scopeID,
		Name:              name,
		Kind:              models.KindLoan,
		TotalAmount:       decimal.NewFromInt(int64(100 * count)),
		InstallmentCount:  count,
		InstallmentAmount: decimal.NewFromInt(100),
		FirstDueDate:      calendar.MustParse(first),
	})
	if err != nil {
		t.Fatalf("failed to seed %s: %v", name, err)
	}
	return installments
}

func sourceIDs(alerts []models.Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = string(a.Source) + ":" + a.Title
	}
	return ids
}

func TestFeedMergesAndOrdersSources(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// 08:00 on 2024-03-28: business date is 2024-03-28.
	clock := calendar.FixedClock(time.Date(2024, 3, 28, 8, 0, 0, 0, time.UTC))

	seedMonthly(t, store, scope, "Overdue loan", "2024-03-20", 1) // 8 days overdue: danger
	seedMonthly(t, store, scope, "Quiet loan", "2024-03-26", 1)   // 2 days overdue: hidden
	seedMonthly(t, store, scope, "Soon loan", "2024-03-30", 1)    // in 2 days: warning
	seedMonthly(t, store, scope, "Far loan", "2024-04-10", 1)     // in 13 days: hidden
	seedMonthly(t, store, scope, "Ancient loan", "2023-12-01", 1) // outside lookback
	seedMonthly(t, store, "store-b", "Other store", "2024-03-28", 1)

	start := calendar.MustParse("2024-01-31")
	if err := store.UpsertStaffMember(ctx, &models.StaffMember{ScopeID: scope, Name: "Alice", StartDate: &start, Active: true}); err != nil {
		t.Fatalf("UpsertStaffMember failed: %v", err)
	}
	noStart := &models.StaffMember{ScopeID: scope, Name: "Bob", Active: true}
	if err := store.UpsertStaffMember(ctx, noStart); err != nil {
		t.Fatalf("UpsertStaffMember failed: %v", err)
	}

	feed := NewFeed(store, clock)
	due := calendar.MustParse("2024-04-01")
	for _, r := range []*models.Reminder{
		{ScopeID: scope, Title: "Count the safe", Severity: models.SeverityInfo},
		{ScopeID: scope, Title: "Fire inspection", Severity: models.SeverityDanger, DueDate: &due},
	} {
		if err := feed.CreateReminder(ctx, r); err != nil {
			t.Fatalf("CreateReminder failed: %v", err)
		}
	}

	alerts, err := feed.List(ctx, scope)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{
		"installment:Overdue loan",
		"reminder:Fire inspection",
		"installment:Soon loan",
		"payroll:Payday: Alice",
		"reminder:Count the safe",
	}
	if diff := cmp.Diff(want, sourceIDs(alerts)); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}

	overdue := alerts[0]
	if overdue.DaysUntil != -8 || overdue.Dismissible {
		t.Errorf("overdue alert = %+v", overdue)
	}
	if overdue.Message != "Installment 1/1 of 100.00 8 days overdue" {
		t.Errorf("overdue message = %q", overdue.Message)
	}
	payday := alerts[3]
	if payday.DueDate.String() != "2024-03-31" || payday.DaysUntil != 3 || payday.Severity != models.SeverityWarning {
		t.Errorf("payday alert = %+v", payday)
	}
}

func TestPayrollSkipsStaffNotYetStarted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	feed := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))

	// Carol's day of month projects to tomorrow, but she starts next month.
	future := calendar.MustParse("2024-04-11")
	if err := store.UpsertStaffMember(ctx, &models.StaffMember{ScopeID: scope, Name: "Carol", StartDate: &future, Active: true}); err != nil {
		t.Fatalf("UpsertStaffMember failed: %v", err)
	}
	// Dan starts today and is paid today.
	today := calendar.MustParse("2024-03-10")
	if err := store.UpsertStaffMember(ctx, &models.StaffMember{ScopeID: scope, Name: "Dan", StartDate: &today, Active: true}); err != nil {
		t.Fatalf("UpsertStaffMember failed: %v", err)
	}

	alerts, err := feed.List(ctx, scope)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"payroll:Payday: Dan"}, sourceIDs(alerts)); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}
	if alerts[0].Severity != models.SeverityDanger {
		t.Errorf("payday severity = %s, want danger", alerts[0].Severity)
	}
}

func TestFeedUsesBusinessDate(t *testing.T) {
	store := newStore(t)
	seedMonthly(t, store, scope, "Loan", "2024-03-04", 1)

	// 06:00 on 2024-03-08 is still business day 2024-03-07: 3 days overdue.
	early := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 8, 6, 0, 0, 0, time.UTC)))
	alerts, err := early.List(context.Background(), scope)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Severity != models.SeverityDanger {
		t.Fatalf("expected one danger alert before cutoff, got %+v", alerts)
	}

	// 07:00 on 2024-03-07 is business day 2024-03-07 as well.
	sameDay := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 7, 7, 0, 0, 0, time.UTC)))
	alerts, _ = sameDay.List(context.Background(), scope)
	if len(alerts) != 1 {
		t.Fatalf("expected one alert at cutoff, got %d", len(alerts))
	}

	// 06:59 on 2024-03-07 is business day 2024-03-06: only 2 days overdue.
	before := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 7, 6, 59, 0, 0, time.UTC)))
	alerts, _ = before.List(context.Background(), scope)
	if len(alerts) != 0 {
		t.Errorf("expected no alerts at 2 days overdue, got %+v", alerts)
	}
}

func TestPaidInstallmentLeavesFeed(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	installments := seedMonthly(t, store, scope, "Loan", "2024-03-10", 1)
	feed := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))

	alerts, _ := feed.List(ctx, scope)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	if err := store.MarkInstallmentPaid(ctx, scope, installments[0].ID, "entry", 1); err != nil {
		t.Fatalf("MarkInstallmentPaid failed: %v", err)
	}
	alerts, _ = feed.List(ctx, scope)
	if len(alerts) != 0 {
		t.Errorf("expected paid installment to drop out, got %+v", alerts)
	}
}

func TestDismissReminder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	feed := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))

	from := calendar.MustParse("2024-03-01")
	until := calendar.MustParse("2024-03-31")
	r := &models.Reminder{ScopeID: scope, Title: "Order stock", Severity: models.SeverityWarning, VisibleFrom: &from, VisibleUntil: &until}
	if err := feed.CreateReminder(ctx, r); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	alerts, _ := feed.List(ctx, scope)
	if len(alerts) != 1 || !alerts[0].Dismissible {
		t.Fatalf("expected one dismissible alert, got %+v", alerts)
	}

	if err := feed.Dismiss(ctx, scope, r.ID); err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	if err := feed.Dismiss(ctx, scope, r.ID); err != nil {
		t.Errorf("second Dismiss should be a no-op, got %v", err)
	}
	alerts, _ = feed.List(ctx, scope)
	if len(alerts) != 0 {
		t.Errorf("dismissed reminder still listed: %+v", alerts)
	}

	if err := feed.Dismiss(ctx, scope, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReminderOutsideWindowHidden(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	feed := NewFeed(store, calendar.FixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))

	from := calendar.MustParse("2024-03-11")
	if err := feed.CreateReminder(ctx, &models.Reminder{ScopeID: scope, Title: "Tomorrow", VisibleFrom: &from}); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	alerts, _ := feed.List(ctx, scope)
	if len(alerts) != 0 {
		t.Errorf("reminder shown before its window: %+v", alerts)
	}
}

func TestCreateReminderValidation(t *testing.T) {
	feed := NewFeed(newStore(t), calendar.FixedClock(time.Now()))
	from := calendar.MustParse("2024-03-10")
	until := calendar.MustParse("2024-03-01")

	tests := []struct {
		name string
		r    *models.Reminder
	}{
		{"missing title", &models.Reminder{ScopeID: scope}},
		{"bad severity", &models.Reminder{ScopeID: scope, Title: "x", Severity: "critical"}},
		{"inverted window", &models.Reminder{ScopeID: scope, Title: "x", VisibleFrom: &from, VisibleUntil: &until}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *models.ValidationError
			if err := feed.CreateReminder(context.Background(), tt.r); !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
