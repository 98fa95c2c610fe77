// Package service implements the tillbook.v1.ObligationService RPCs on top
// of the schedule, ledger, goals and alerts components.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tillbook/internal/alerts"
	"github.com/mmynk/tillbook/internal/calendar"
	"github.com/mmynk/tillbook/internal/goals"
	"github.com/mmynk/tillbook/internal/ledger"
	"github.com/mmynk/tillbook/internal/metrics"
	"github.com/mmynk/tillbook/internal/middleware"
	"github.com/mmynk/tillbook/internal/models"
	"github.com/mmynk/tillbook/internal/schedule"
	"github.com/mmynk/tillbook/internal/storage"
	"github.com/mmynk/tillbook/pkg/api"
	"github.com/mmynk/tillbook/pkg/api/apiconnect"
)

// ObligationService implements the Connect ObligationService
type ObligationService struct {
	apiconnect.UnimplementedObligationServiceHandler
	store      storage.Store
	generator  *schedule.Generator
	reconciler *ledger.Reconciler
	goals      *goals.Service
	feed       *alerts.Feed
}

// NewObligationService creates an ObligationService over the given storage
// backend. The clock decides the business date for ledger entries and alerts.
func NewObligationService(store storage.Store, clock calendar.Clock) *ObligationService {
	return &ObligationService{
		store:      store,
		generator:  schedule.NewGenerator(store),
		reconciler: ledger.NewReconciler(store, clock),
		goals:      goals.NewService(store, clock),
		feed:       alerts.NewFeed(store, clock),
	}
}

// scopeFrom returns the store id set by middleware.RequireScope.
func scopeFrom(ctx context.Context) (string, error) {
	scopeID := middleware.GetScopeID(ctx)
	if scopeID == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, middleware.ErrMissingScope)
	}
	return scopeID, nil
}

func settlementInput(scopeID string, msg *api.CreateSettlementRequest) (schedule.Input, error) {
	firstDue, err := parseDate("first_due_date", msg.FirstDueDate)
	if err != nil {
		return schedule.Input{}, err
	}
	return schedule.Input{
		ScopeID:           scopeID,
		Name:              msg.Name,
		Kind:              models.SettlementKind(msg.Kind),
		ExternalRef:       msg.ExternalRef,
		TotalAmount:       msg.TotalAmount,
		InstallmentCount:  msg.InstallmentCount,
		InstallmentAmount: msg.InstallmentAmount,
		FirstDueDate:      firstDue,
	}, nil
}

// CreateSettlement stores a settlement together with its full schedule.
func (s *ObligationService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"scope_id", scopeID,
		"name", req.Msg.Name,
		"kind", req.Msg.Kind,
		"installment_count", req.Msg.InstallmentCount,
	)

	in, err := settlementInput(scopeID, req.Msg)
	if err != nil {
		return nil, connectError(err)
	}
	settlement, installments, err := s.generator.Create(ctx, in)
	if err != nil {
		slog.Error("CreateSettlement failed", "scope_id", scopeID, "error", err)
		return nil, connectError(err)
	}
	metrics.RecordSettlementCreated(string(settlement.Kind))

	slog.Info("Settlement created",
		"settlement_id", settlement.ID,
		"scope_id", scopeID,
		"installments", len(installments),
	)

	return connect.NewResponse(&api.CreateSettlementResponse{
		Settlement:   toAPISettlement(settlement),
		Installments: toAPIInstallments(installments),
	}), nil
}

// GetSettlement returns a settlement and its installments in sequence order.
func (s *ObligationService) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetSettlement request received", "scope_id", scopeID, "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, scopeID, req.Msg.SettlementID)
	if err != nil {
		slog.Error("GetSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, connectError(err)
	}
	installments, err := s.store.ListInstallments(ctx, scopeID, settlement.ID)
	if err != nil {
		slog.Error("ListInstallments failed", "settlement_id", settlement.ID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetSettlementResponse{
		Settlement:   toAPISettlement(settlement),
		Installments: toAPIInstallments(installments),
	}), nil
}

// PreviewSchedule computes the installments a settlement would get without
// writing anything.
func (s *ObligationService) PreviewSchedule(ctx context.Context, req *connect.Request[api.PreviewScheduleRequest]) (*connect.Response[api.PreviewScheduleResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	msg := api.CreateSettlementRequest(*req.Msg)
	in, err := settlementInput(scopeID, &msg)
	if err != nil {
		return nil, connectError(err)
	}
	installments, err := s.generator.Preview(in)
	if err != nil {
		slog.Debug("PreviewSchedule rejected", "scope_id", scopeID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.PreviewScheduleResponse{
		Installments: toAPIInstallments(installments),
	}), nil
}

// PayInstallment records the payment of a pending installment in the ledger.
func (s *ObligationService) PayInstallment(ctx context.Context, req *connect.Request[api.PayInstallmentRequest]) (*connect.Response[api.PayInstallmentResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	actor := middleware.GetActor(ctx)
	slog.Info("PayInstallment request received",
		"scope_id", scopeID,
		"installment_id", req.Msg.InstallmentID,
		"method", req.Msg.Method,
		"actor", actor,
	)

	payment, err := s.reconciler.Pay(ctx, scopeID, req.Msg.InstallmentID, models.PaymentMethod(req.Msg.Method), actor)
	if err != nil {
		slog.Error("PayInstallment failed", "installment_id", req.Msg.InstallmentID, "error", err)
		return nil, connectError(err)
	}
	metrics.RecordInstallmentPaid(string(payment.Entry.Method))

	slog.Info("Installment paid",
		"installment_id", payment.Installment.ID,
		"ledger_entry_id", payment.Entry.ID,
		"amount", payment.Entry.Amount.String(),
	)

	return connect.NewResponse(&api.PayInstallmentResponse{
		Installment: toAPIInstallment(&payment.Installment),
		LedgerEntry: toAPILedgerEntry(&payment.Entry),
	}), nil
}

// UndoPayment sets a paid installment back to pending, optionally deleting
// the ledger entry it pointed at.
func (s *ObligationService) UndoPayment(ctx context.Context, req *connect.Request[api.UndoPaymentRequest]) (*connect.Response[api.UndoPaymentResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UndoPayment request received",
		"scope_id", scopeID,
		"installment_id", req.Msg.InstallmentID,
		"delete_ledger_entry", req.Msg.DeleteLedgerEntry,
	)

	entryID, err := s.reconciler.Undo(ctx, scopeID, req.Msg.InstallmentID, req.Msg.DeleteLedgerEntry)
	if err != nil {
		slog.Error("UndoPayment failed", "installment_id", req.Msg.InstallmentID, "error", err)
		return nil, connectError(err)
	}
	metrics.RecordPaymentUndone()

	inst, err := s.store.GetInstallment(ctx, scopeID, req.Msg.InstallmentID)
	if err != nil {
		slog.Error("Failed to fetch reset installment", "installment_id", req.Msg.InstallmentID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.UndoPaymentResponse{
		Installment:           toAPIInstallment(inst),
		UnlinkedLedgerEntryID: deref(entryID),
	}), nil
}

// CreateGoal creates a savings goal with a zero balance.
func (s *ObligationService) CreateGoal(ctx context.Context, req *connect.Request[api.CreateGoalRequest]) (*connect.Response[api.CreateGoalResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGoal request received", "scope_id", scopeID, "name", req.Msg.Name)

	targetDate, err := parseOptionalDate("target_date", req.Msg.TargetDate)
	if err != nil {
		return nil, connectError(err)
	}
	goal := &models.SavingsGoal{
		ScopeID:      scopeID,
		Name:         req.Msg.Name,
		TargetAmount: req.Msg.TargetAmount,
		TargetDate:   targetDate,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		slog.Error("CreateGoal failed", "scope_id", scopeID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Savings goal created", "goal_id", goal.ID)

	return connect.NewResponse(&api.CreateGoalResponse{Goal: toAPIGoal(goal)}), nil
}

// AdjustGoal deposits into or withdraws from a savings goal.
func (s *ObligationService) AdjustGoal(ctx context.Context, req *connect.Request[api.AdjustGoalRequest]) (*connect.Response[api.AdjustGoalResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AdjustGoal request received",
		"scope_id", scopeID,
		"goal_id", req.Msg.GoalID,
		"action", req.Msg.Action,
		"amount", req.Msg.Amount.String(),
	)

	res, err := s.goals.Adjust(ctx, goals.Adjustment{
		ScopeID: scopeID,
		GoalID:  req.Msg.GoalID,
		Action:  models.GoalAction(req.Msg.Action),
		Amount:  req.Msg.Amount,
		Method:  models.PaymentMethod(req.Msg.Method),
		Actor:   middleware.GetActor(ctx),
	})
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			slog.Warn("AdjustGoal rejected", "goal_id", req.Msg.GoalID, "error", err)
		} else {
			slog.Error("AdjustGoal failed", "goal_id", req.Msg.GoalID, "error", err)
		}
		return nil, connectError(err)
	}
	metrics.RecordGoalAdjustment(req.Msg.Action)

	slog.Info("Savings goal adjusted",
		"goal_id", res.Goal.ID,
		"balance", res.Goal.CurrentAmount.String(),
		"status", res.Goal.Status,
	)

	return connect.NewResponse(&api.AdjustGoalResponse{
		Goal:        toAPIGoal(&res.Goal),
		LedgerEntry: toAPILedgerEntry(&res.Entry),
	}), nil
}

// ListAlerts returns the merged alert feed, most urgent first.
func (s *ObligationService) ListAlerts(ctx context.Context, req *connect.Request[api.ListAlertsRequest]) (*connect.Response[api.ListAlertsResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.feed.List(ctx, scopeID)
	if err != nil {
		slog.Error("ListAlerts failed", "scope_id", scopeID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Alert, len(list))
	for i := range list {
		out[i] = toAPIAlert(&list[i])
		metrics.RecordAlert(string(list[i].Source), string(list[i].Severity))
	}

	slog.Info("ListAlerts successful", "scope_id", scopeID, "count", len(out))

	return connect.NewResponse(&api.ListAlertsResponse{Alerts: out}), nil
}

// CreateReminder adds a free-form reminder to the feed.
func (s *ObligationService) CreateReminder(ctx context.Context, req *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateReminder request received", "scope_id", scopeID, "title", req.Msg.Title)

	dueDate, err := parseOptionalDate("due_date", req.Msg.DueDate)
	if err != nil {
		return nil, connectError(err)
	}
	visibleFrom, err := parseOptionalDate("visible_from", req.Msg.VisibleFrom)
	if err != nil {
		return nil, connectError(err)
	}
	visibleUntil, err := parseOptionalDate("visible_until", req.Msg.VisibleUntil)
	if err != nil {
		return nil, connectError(err)
	}
	reminder := &models.Reminder{
		ScopeID:      scopeID,
		Title:        req.Msg.Title,
		Message:      strings.TrimSpace(req.Msg.Message),
		Severity:     models.Severity(req.Msg.Severity),
		DueDate:      dueDate,
		VisibleFrom:  visibleFrom,
		VisibleUntil: visibleUntil,
	}
	if err := s.feed.CreateReminder(ctx, reminder); err != nil {
		slog.Error("CreateReminder failed", "scope_id", scopeID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Reminder created", "reminder_id", reminder.ID)

	return connect.NewResponse(&api.CreateReminderResponse{Reminder: toAPIReminder(reminder)}), nil
}

// DismissReminder permanently hides a reminder. Only reminders can be
// dismissed; installment and payroll alerts have no stored state.
func (s *ObligationService) DismissReminder(ctx context.Context, req *connect.Request[api.DismissReminderRequest]) (*connect.Response[api.DismissReminderResponse], error) {
	scopeID, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DismissReminder request received", "scope_id", scopeID, "reminder_id", req.Msg.ReminderID)

	if err := s.feed.Dismiss(ctx, scopeID, req.Msg.ReminderID); err != nil {
		slog.Error("DismissReminder failed", "reminder_id", req.Msg.ReminderID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.DismissReminderResponse{}), nil
}
