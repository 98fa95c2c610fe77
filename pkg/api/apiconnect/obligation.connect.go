// Package apiconnect binds the tillbook.v1.ObligationService procedures to
// connect handlers and clients.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tillbook/pkg/api"
)

// ObligationServiceName is the fully-qualified name of the ObligationService service.
const ObligationServiceName = "tillbook.v1.ObligationService"

// Procedure paths, e.g. "/tillbook.v1.ObligationService/CreateSettlement".
const (
	ObligationServiceCreateSettlementProcedure = "/tillbook.v1.ObligationService/CreateSettlement"
	ObligationServiceGetSettlementProcedure    = "/tillbook.v1.ObligationService/GetSettlement"
	ObligationServicePreviewScheduleProcedure  = "/tillbook.v1.ObligationService/PreviewSchedule"
	ObligationServicePayInstallmentProcedure   = "/tillbook.v1.ObligationService/PayInstallment"
	ObligationServiceUndoPaymentProcedure      = "/tillbook.v1.ObligationService/UndoPayment"
	ObligationServiceCreateGoalProcedure       = "/tillbook.v1.ObligationService/CreateGoal"
	ObligationServiceAdjustGoalProcedure       = "/tillbook.v1.ObligationService/AdjustGoal"
	ObligationServiceListAlertsProcedure       = "/tillbook.v1.ObligationService/ListAlerts"
	ObligationServiceCreateReminderProcedure   = "/tillbook.v1.ObligationService/CreateReminder"
	ObligationServiceDismissReminderProcedure  = "/tillbook.v1.ObligationService/DismissReminder"
)

// ObligationServiceClient is a client for the tillbook.v1.ObligationService service.
type ObligationServiceClient interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error)
	PreviewSchedule(context.Context, *connect.Request[api.PreviewScheduleRequest]) (*connect.Response[api.PreviewScheduleResponse], error)
	PayInstallment(context.Context, *connect.Request[api.PayInstallmentRequest]) (*connect.Response[api.PayInstallmentResponse], error)
	UndoPayment(context.Context, *connect.Request[api.UndoPaymentRequest]) (*connect.Response[api.UndoPaymentResponse], error)
	CreateGoal(context.Context, *connect.Request[api.CreateGoalRequest]) (*connect.Response[api.CreateGoalResponse], error)
	AdjustGoal(context.Context, *connect.Request[api.AdjustGoalRequest]) (*connect.Response[api.AdjustGoalResponse], error)
	ListAlerts(context.Context, *connect.Request[api.ListAlertsRequest]) (*connect.Response[api.ListAlertsResponse], error)
	CreateReminder(context.Context, *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error)
	DismissReminder(context.Context, *connect.Request[api.DismissReminderRequest]) (*connect.Response[api.DismissReminderResponse], error)
}

// NewObligationServiceClient constructs a client for the
// tillbook.v1.ObligationService service. The JSON codec is always used.
//
// The URL supplied here should be the base URL for the Connect server
// (for example, http://api.acme.com or https://acme.com/grpc).
func NewObligationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ObligationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &obligationServiceClient{
		createSettlement: connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL+ObligationServiceCreateSettlementProcedure, opts...),
		getSettlement:    connect.NewClient[api.GetSettlementRequest, api.GetSettlementResponse](httpClient, baseURL+ObligationServiceGetSettlementProcedure, opts...),
		previewSchedule:  connect.NewClient[api.PreviewScheduleRequest, api.PreviewScheduleResponse](httpClient, baseURL+ObligationServicePreviewScheduleProcedure, opts...),
		payInstallment:   connect.NewClient[api.PayInstallmentRequest, api.PayInstallmentResponse](httpClient, baseURL+ObligationServicePayInstallmentProcedure, opts...),
		undoPayment:      connect.NewClient[api.UndoPaymentRequest, api.UndoPaymentResponse](httpClient, baseURL+ObligationServiceUndoPaymentProcedure, opts...),
		createGoal:       connect.NewClient[api.CreateGoalRequest, api.CreateGoalResponse](httpClient, baseURL+ObligationServiceCreateGoalProcedure, opts...),
		adjustGoal:       connect.NewClient[api.AdjustGoalRequest, api.AdjustGoalResponse](httpClient, baseURL+ObligationServiceAdjustGoalProcedure, opts...),
		listAlerts:       connect.NewClient[api.ListAlertsRequest, api.ListAlertsResponse](httpClient, baseURL+ObligationServiceListAlertsProcedure, opts...),
		createReminder:   connect.NewClient[api.CreateReminderRequest, api.CreateReminderResponse](httpClient, baseURL+ObligationServiceCreateReminderProcedure, opts...),
		dismissReminder:  connect.NewClient[api.DismissReminderRequest, api.DismissReminderResponse](httpClient, baseURL+ObligationServiceDismissReminderProcedure, opts...),
	}
}

type obligationServiceClient struct {
	createSettlement *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	getSettlement    *connect.Client[api.GetSettlementRequest, api.GetSettlementResponse]
	previewSchedule  *connect.Client[api.PreviewScheduleRequest, api.PreviewScheduleResponse]
	payInstallment   *connect.Client[api.PayInstallmentRequest, api.PayInstallmentResponse]
	undoPayment      *connect.Client[api.UndoPaymentRequest, api.UndoPaymentResponse]
	createGoal       *connect.Client[api.CreateGoalRequest, api.CreateGoalResponse]
	adjustGoal       *connect.Client[api.AdjustGoalRequest, api.AdjustGoalResponse]
	listAlerts       *connect.Client[api.ListAlertsRequest, api.ListAlertsResponse]
	createReminder   *connect.Client[api.CreateReminderRequest, api.CreateReminderResponse]
	dismissReminder  *connect.Client[api.DismissReminderRequest, api.DismissReminderResponse]
}

func (c *obligationServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *obligationServiceClient) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *obligationServiceClient) PreviewSchedule(ctx context.Context, req *connect.Request[api.PreviewScheduleRequest]) (*connect.Response[api.PreviewScheduleResponse], error) {
	return c.previewSchedule.CallUnary(ctx, req)
}

func (c *obligationServiceClient) PayInstallment(ctx context.Context, req *connect.Request[api.PayInstallmentRequest]) (*connect.Response[api.PayInstallmentResponse], error) {
	return c.payInstallment.CallUnary(ctx, req)
}

func (c *obligationServiceClient) UndoPayment(ctx context.Context, req *connect.Request[api.UndoPaymentRequest]) (*connect.Response[api.UndoPaymentResponse], error) {
	return c.undoPayment.CallUnary(ctx, req)
}

func (c *obligationServiceClient) CreateGoal(ctx context.Context, req *connect.Request[api.CreateGoalRequest]) (*connect.Response[api.CreateGoalResponse], error) {
	return c.createGoal.CallUnary(ctx, req)
}

func (c *obligationServiceClient) AdjustGoal(ctx context.Context, req *connect.Request[api.AdjustGoalRequest]) (*connect.Response[api.AdjustGoalResponse], error) {
	return c.adjustGoal.CallUnary(ctx, req)
}

func (c *obligationServiceClient) ListAlerts(ctx context.Context, req *connect.Request[api.ListAlertsRequest]) (*connect.Response[api.ListAlertsResponse], error) {
	return c.listAlerts.CallUnary(ctx, req)
}

func (c *obligationServiceClient) CreateReminder(ctx context.Context, req *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error) {
	return c.createReminder.CallUnary(ctx, req)
}

func (c *obligationServiceClient) DismissReminder(ctx context.Context, req *connect.Request[api.DismissReminderRequest]) (*connect.Response[api.DismissReminderResponse], error) {
	return c.dismissReminder.CallUnary(ctx, req)
}

// ObligationServiceHandler is an implementation of the tillbook.v1.ObligationService service.
type ObligationServiceHandler interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error)
	PreviewSchedule(context.Context, *connect.Request[api.PreviewScheduleRequest]) (*connect.Response[api.PreviewScheduleResponse], error)
	PayInstallment(context.Context, *connect.Request[api.PayInstallmentRequest]) (*connect.Response[api.PayInstallmentResponse], error)
	UndoPayment(context.Context, *connect.Request[api.UndoPaymentRequest]) (*connect.Response[api.UndoPaymentResponse], error)
	CreateGoal(context.Context, *connect.Request[api.CreateGoalRequest]) (*connect.Response[api.CreateGoalResponse], error)
	AdjustGoal(context.Context, *connect.Request[api.AdjustGoalRequest]) (*connect.Response[api.AdjustGoalResponse], error)
	ListAlerts(context.Context, *connect.Request[api.ListAlertsRequest]) (*connect.Response[api.ListAlertsResponse], error)
	CreateReminder(context.Context, *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error)
	DismissReminder(context.Context, *connect.Request[api.DismissReminderRequest]) (*connect.Response[api.DismissReminderResponse], error)
}

// NewObligationServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewObligationServiceHandler(svc ObligationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	handlers := map[string]http.Handler{
		ObligationServiceCreateSettlementProcedure: connect.NewUnaryHandler(ObligationServiceCreateSettlementProcedure, svc.CreateSettlement, opts...),
		ObligationServiceGetSettlementProcedure:    connect.NewUnaryHandler(ObligationServiceGetSettlementProcedure, svc.GetSettlement, opts...),
		ObligationServicePreviewScheduleProcedure:  connect.NewUnaryHandler(ObligationServicePreviewScheduleProcedure, svc.PreviewSchedule, opts...),
		ObligationServicePayInstallmentProcedure:   connect.NewUnaryHandler(ObligationServicePayInstallmentProcedure, svc.PayInstallment, opts...),
		ObligationServiceUndoPaymentProcedure:      connect.NewUnaryHandler(ObligationServiceUndoPaymentProcedure, svc.UndoPayment, opts...),
		ObligationServiceCreateGoalProcedure:       connect.NewUnaryHandler(ObligationServiceCreateGoalProcedure, svc.CreateGoal, opts...),
		ObligationServiceAdjustGoalProcedure:       connect.NewUnaryHandler(ObligationServiceAdjustGoalProcedure, svc.AdjustGoal, opts...),
		ObligationServiceListAlertsProcedure:       connect.NewUnaryHandler(ObligationServiceListAlertsProcedure, svc.ListAlerts, opts...),
		ObligationServiceCreateReminderProcedure:   connect.NewUnaryHandler(ObligationServiceCreateReminderProcedure, svc.CreateReminder, opts...),
		ObligationServiceDismissReminderProcedure:  connect.NewUnaryHandler(ObligationServiceDismissReminderProcedure, svc.DismissReminder, opts...),
	}
	return "/" + ObligationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// UnimplementedObligationServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedObligationServiceHandler struct{}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}

func (UnimplementedObligationServiceHandler) CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return nil, unimplemented(ObligationServiceCreateSettlementProcedure)
}

func (UnimplementedObligationServiceHandler) GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	return nil, unimplemented(ObligationServiceGetSettlementProcedure)
}

func (UnimplementedObligationServiceHandler) PreviewSchedule(context.Context, *connect.Request[api.PreviewScheduleRequest]) (*connect.Response[api.PreviewScheduleResponse], error) {
	return nil, unimplemented(ObligationServicePreviewScheduleProcedure)
}

func (UnimplementedObligationServiceHandler) PayInstallment(context.Context, *connect.Request[api.PayInstallmentRequest]) (*connect.Response[api.PayInstallmentResponse], error) {
	return nil, unimplemented(ObligationServicePayInstallmentProcedure)
}

func (UnimplementedObligationServiceHandler) UndoPayment(context.Context, *connect.Request[api.UndoPaymentRequest]) (*connect.Response[api.UndoPaymentResponse], error) {
	return nil, unimplemented(ObligationServiceUndoPaymentProcedure)
}

func (UnimplementedObligationServiceHandler) CreateGoal(context.Context, *connect.Request[api.CreateGoalRequest]) (*connect.Response[api.CreateGoalResponse], error) {
	return nil, unimplemented(ObligationServiceCreateGoalProcedure)
}

func (UnimplementedObligationServiceHandler) AdjustGoal(context.Context, *connect.Request[api.AdjustGoalRequest]) (*connect.Response[api.AdjustGoalResponse], error) {
	return nil, unimplemented(ObligationServiceAdjustGoalProcedure)
}

func (UnimplementedObligationServiceHandler) ListAlerts(context.Context, *connect.Request[api.ListAlertsRequest]) (*connect.Response[api.ListAlertsResponse], error) {
	return nil, unimplemented(ObligationServiceListAlertsProcedure)
}

func (UnimplementedObligationServiceHandler) CreateReminder(context.Context, *connect.Request[api.CreateReminderRequest]) (*connect.Response[api.CreateReminderResponse], error) {
	return nil, unimplemented(ObligationServiceCreateReminderProcedure)
}

func (UnimplementedObligationServiceHandler) DismissReminder(context.Context, *connect.Request[api.DismissReminderRequest]) (*connect.Response[api.DismissReminderResponse], error) {
	return nil, unimplemented(ObligationServiceDismissReminderProcedure)
}
