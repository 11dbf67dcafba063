package auth

import (
	"context"

	"github.com/casefile/casefile/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// principalContextKey is the context key for storing the Principal.
const principalContextKey contextKey = "principal"

// ContextWithPrincipal adds the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// The second return is false if no principal is present.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(model.Principal)
	return p, ok
}

// MustPrincipalFromContext retrieves the principal from the context.
// Panics if not present (use only behind the auth middleware).
func MustPrincipalFromContext(ctx context.Context) model.Principal {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		panic("principal not found in context - ensure auth middleware is applied")
	}
	return p
}
