package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports input rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// MaxAmount bounds every entered amount. Stored cents must fit in int64
// with room left for goal balances to accumulate.
var MaxAmount = decimal.New(1, 12)

// ValidatePositiveAmount checks that an amount is > 0 and below MaxAmount,
// with at most two fractional digits.
func ValidatePositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Invalid(field, "must be greater than zero, got %s", amount)
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return Invalid(field, "must be less than %s, got %s", MaxAmount, amount)
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return Invalid(field, "must have at most 2 decimal places, got %s", amount)
	}
	return nil
}
