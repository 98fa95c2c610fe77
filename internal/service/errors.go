package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/tillbook/internal/goals"
	"github.com/mmynk/tillbook/internal/ledger"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/schedule"
	"github.com/mmynk/tillbook/internal/storage"
)

// connectError maps a domain error onto a connect status code.
// Half-applied writes are internal errors whatever their cause wraps.
func connectError(err error) error {
	var (
		verr     *models.ValidationError
		dangling *ledger.DanglingEntryError
		diverged *goals.DivergenceError
	)
	switch {
	case schedule.IsCompensationFailure(err), errors.As(err, &dangling), errors.As(err, &diverged):
		return connect.NewError(connect.CodeInternal, err)
	case errors.As(err, &verr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrNotPending),
		errors.Is(err, storage.ErrNotPaid),
		errors.Is(err, storage.ErrInsufficientBalance):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
