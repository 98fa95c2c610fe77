package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillbook/internal/calendar"
)

// GoalStatus is active until the target is first reached.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalCompleted
}

// GoalAction is the direction of a balance adjustment.
type GoalAction string

const (
	GoalDeposit  GoalAction = "deposit"
	GoalWithdraw GoalAction = "withdraw"
)

func (a GoalAction) Valid() bool {
	return a == GoalDeposit || a == GoalWithdraw
}

// SavingsGoal is a named target balance. CurrentAmount only changes through
// the store's atomic increment.
type SavingsGoal struct {
	ID            string
	ScopeID       string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	TargetDate    *calendar.Date
	Status        GoalStatus
	CreatedAt     int64
}

// NextGoalStatus returns the status after the balance moves to newBalance.
// A completed goal stays completed even if a withdrawal drops it below target.
func NextGoalStatus(current GoalStatus, newBalance, target decimal.Decimal) GoalStatus {
	if current == GoalCompleted || newBalance.GreaterThanOrEqual(target) {
		return GoalCompleted
	}
	return GoalActive
}
