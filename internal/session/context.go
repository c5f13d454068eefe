package session

import (
	"context"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// ContextKeySession is the key for the session a deferred action runs under
const ContextKeySession ContextKey = "session"

// ContextWithSession returns a new context with the session set
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, s)
}

// SessionFromContext extracts the session from context
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ContextKeySession).(*Session)
	return s, ok && s != nil
}
