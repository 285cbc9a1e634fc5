// Package identity carries per-turn user, session and request identifiers
// through request contexts.
package identity

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
	requestIDKey
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,256}$`)

// Turn identifies one conversational turn.
type Turn struct {
	UserID    string
	SessionID string
	RequestID string
}

// WithTurn returns a context carrying the turn identifiers. A missing or
// malformed request ID is replaced with a generated one.
func WithTurn(ctx context.Context, t Turn) context.Context {
	ctx = context.WithValue(ctx, userIDKey, t.UserID)
	ctx = context.WithValue(ctx, sessionIDKey, t.SessionID)
	return context.WithValue(ctx, requestIDKey, sanitizeRequestID(t.RequestID))
}

// UserIDFromContext extracts the user ID from the context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext extracts the session ID from the context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// NewRequestID generates a request identifier.
func NewRequestID() string {
	return "req." + uuid.NewString()
}

func sanitizeRequestID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !requestIDPattern.MatchString(id) {
		return NewRequestID()
	}
	return id
}
