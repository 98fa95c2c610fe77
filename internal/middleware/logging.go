package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tillbook/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and records its outcome in the RPC metrics.
// It logs the procedure name, scope, duration, and any error codes/messages.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			// Scope is read from the request because this interceptor runs
			// outside RequireScope.
			scopeID := req.Header().Get(ScopeHeader)
			elapsed := time.Since(start)
			duration := elapsed.Milliseconds()
			code := "ok"
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"scope_id", scopeID,
						"duration_ms", duration,
					)
				} else {
					code = connect.CodeUnknown.String()
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"scope_id", scopeID,
						"duration_ms", duration,
					)
				}
			} else {
				slog.Info("RPC ok",
					"procedure", procedure,
					"scope_id", scopeID,
					"duration_ms", duration,
				)
			}
			metrics.ObserveRPC(procedure, code, elapsed)

			return resp, err
		}
	}
}
