package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ScopeIDKey is the context key for the store (tenant) a request acts on.
	ScopeIDKey contextKey = "scope_id"
	// ActorKey is the context key for the person recorded in audit fields.
	ActorKey contextKey = "actor"
)

// Request headers carrying the scope and actor. The front end resolves both
// before calling; nothing here authenticates them.
const (
	ScopeHeader = "X-Store-Id"
	ActorHeader = "X-Actor"
)

// ErrMissingScope is returned when a request names no store.
var ErrMissingScope = errors.New("store id header required")

// GetScopeID extracts the scope ID from the context.
// Returns empty string if not found.
func GetScopeID(ctx context.Context) string {
	scopeID, _ := ctx.Value(ScopeIDKey).(string)
	return scopeID
}

// GetActor extracts the actor from the context.
// Returns empty string if not found.
func GetActor(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

// WithScope returns a context carrying the given scope and actor.
func WithScope(ctx context.Context, scopeID, actor string) context.Context {
	ctx = context.WithValue(ctx, ScopeIDKey, scopeID)
	return context.WithValue(ctx, ActorKey, actor)
}

// RequireScope returns an interceptor that reads the store id and actor
// headers into the context and rejects requests without a store id.
func RequireScope() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			scopeID := strings.TrimSpace(req.Header().Get(ScopeHeader))
			if scopeID == "" {
				return nil, connect.NewError(connect.CodeInvalidArgument, ErrMissingScope)
			}
			actor := strings.TrimSpace(req.Header().Get(ActorHeader))

			return next(WithScope(ctx, scopeID, actor), req)
		}
	}
}
