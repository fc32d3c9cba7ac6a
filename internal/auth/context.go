// Package auth verifies session tokens issued by the external auth provider
// and carries the resulting identity through request contexts.
package auth

import "context"

// Identity is the authenticated caller.
type Identity struct {
	UserID     int64  // internal users.id
	ExternalID string // auth provider subject
	Email      string
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity adds an Identity to the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil if not present.
func IdentityFromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if not present (use only when auth middleware has run).
func MustIdentityFromContext(ctx context.Context) *Identity {
	id := IdentityFromContext(ctx)
	if id == nil {
		panic("identity not found - ensure auth middleware is applied")
	}
	return id
}

// UserIDFromContext returns the internal user id, or 0 if not authenticated.
func UserIDFromContext(ctx context.Context) int64 {
	id := IdentityFromContext(ctx)
	if id == nil {
		return 0
	}
	return id.UserID
}
