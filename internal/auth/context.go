package auth

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// usernameContextKey is the context key for the authenticated username.
	usernameContextKey contextKey = "auth_username"
)

// ContextWithUsername records the token owner on the context.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey, username)
}

// UsernameFromContext returns the authenticated username.
// Returns empty string if not authenticated.
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameContextKey).(string)
	return username
}
