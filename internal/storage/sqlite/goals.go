package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/storage"
)

const goalColumns = `id, scope_id, name, target_amount, current_amount, target_date, status, created_at`

// CreateGoal persists a new savings goal.
func (s *SQLiteStore) CreateGoal(ctx context.Context, g *models.SavingsGoal) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = s.now()
	}
	if g.Status == "" {
		g.Status = models.NextGoalStatus(models.GoalActive, g.CurrentAmount, g.TargetAmount)
	}

	target, err := toCents(g.TargetAmount)
	if err != nil {
		return fmt.Errorf("failed to insert savings goal: %w", err)
	}
	current, err := toCents(g.CurrentAmount)
	if err != nil {
		return fmt.Errorf("failed to insert savings goal: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO savings_goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ScopeID, g.Name, target, current,
		dateValue(g.TargetDate), string(g.Status), g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert savings goal: %w", err)
	}

	return nil
}

func scanGoal(row rowScanner) (*models.SavingsGoal, error) {
	g := &models.SavingsGoal{}
	var target, current int64
	var targetDate calendar.Date
	var status string

	if err := row.Scan(&g.ID, &g.ScopeID, &g.Name, &target, &current, &targetDate, &status, &g.CreatedAt); err != nil {
		return nil, err
	}

	g.TargetAmount = fromCents(target)
	g.CurrentAmount = fromCents(current)
	g.TargetDate = datePtr(targetDate)
	g.Status = models.GoalStatus(status)
	return g, nil
}

// GetGoal retrieves a savings goal by ID within a scope.
func (s *SQLiteStore) GetGoal(ctx context.Context, scopeID, goalID string) (*models.SavingsGoal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND scope_id = ?`,
		goalID, scopeID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("savings goal %s: %w", goalID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	return g, nil
}

// incrementGoalSQL is the atomic read-modify-write of a goal balance. SQLite
// evaluates every SET expression against the pre-update row, so both the
// bound check and the status CASE see the old balance plus delta. The CASE
// mirrors models.NextGoalStatus: completed never goes back to active.
const incrementGoalSQL = `UPDATE savings_goals
SET current_amount = current_amount + ?1,
    status = CASE
        WHEN status = 'completed' OR current_amount + ?1 >= target_amount THEN 'completed'
        ELSE 'active'
    END
WHERE id = ?2 AND scope_id = ?3 AND current_amount + ?1 >= 0
RETURNING ` + goalColumns

// IncrementGoalBalance adds delta to the goal balance in one statement.
func (s *SQLiteStore) IncrementGoalBalance(ctx context.Context, scopeID, goalID string, delta decimal.Decimal) (*models.SavingsGoal, error) {
	cents, err := toCents(delta)
	if err != nil {
		return nil, fmt.Errorf("failed to increment savings goal: %w", err)
	}

	g, err := scanGoal(s.db.QueryRowContext(ctx, incrementGoalSQL, cents, goalID, scopeID))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to increment savings goal: %w", err)
	}

	// No row matched: the goal is missing here or the bound check failed.
	if _, err := s.GetGoal(ctx, scopeID, goalID); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("savings goal %s: %w", goalID, storage.ErrInsufficientBalance)
}
