package ctxutil

import (
	"context"
)

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	usernameKey  ctxKey = "username"
	requestIDKey ctxKey = "request_id"
)

// WithUserID stores the caller's chat user ID in the context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx extracts the caller's user ID from the context.
// Returns 0 and false if the value is missing, non-positive, or wrong type.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// WithUsername stores the caller's chat handle in the context.
func WithUsername(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, usernameKey, name)
}

// UsernameFromCtx extracts the caller's handle. Returns an empty string if absent.
func UsernameFromCtx(ctx context.Context) string {
	name, _ := ctx.Value(usernameKey).(string)
	return name
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
