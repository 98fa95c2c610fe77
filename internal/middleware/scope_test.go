package middleware

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
)

func TestRequireScope(t *testing.T) {
	tests := []struct {
		name      string
		scope     string
		actor     string
		wantScope string
		wantActor string
		wantCode  connect.Code
	}{
		{name: "scope and actor", scope: "store-a", actor: "alice", wantScope: "store-a", wantActor: "alice"},
		{name: "scope only", scope: "store-a", wantScope: "store-a"},
		{name: "whitespace trimmed", scope: "  store-a ", actor: " bob ", wantScope: "store-a", wantActor: "bob"},
		{name: "missing scope", actor: "alice", wantCode: connect.CodeInvalidArgument},
		{name: "blank scope", scope: "   ", wantCode: connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotScope, gotActor string
			next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				gotScope = GetScopeID(ctx)
				gotActor = GetActor(ctx)
				return nil, nil
			})

			req := connect.NewRequest(&struct{}{})
			if tt.scope != "" {
				req.Header().Set(ScopeHeader, tt.scope)
			}
			if tt.actor != "" {
				req.Header().Set(ActorHeader, tt.actor)
			}

			_, err := RequireScope()(next)(context.Background(), req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				if !errors.Is(err, ErrMissingScope) {
					t.Errorf("expected ErrMissingScope, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotScope != tt.wantScope || gotActor != tt.wantActor {
				t.Errorf("context = (%q, %q), want (%q, %q)", gotScope, gotActor, tt.wantScope, tt.wantActor)
			}
		})
	}
}

func TestGetScopeIDEmptyContext(t *testing.T) {
	if got := GetScopeID(context.Background()); got != "" {
		t.Errorf("GetScopeID() = %q, want empty", got)
	}
	if got := GetActor(context.Background()); got != "" {
		t.Errorf("GetActor() = %q, want empty", got)
	}
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	wantErr := connect.NewError(connect.CodeNotFound, errors.New("missing"))
	next := connect.UnaryFunc(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, wantErr
	})

	req := connect.NewRequest(&struct{}{})
	req.Header().Set(ScopeHeader, "store-a")
	_, err := LoggingInterceptor()(next)(context.Background(), req)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected interceptor to return the handler error, got %v", err)
	}
}
