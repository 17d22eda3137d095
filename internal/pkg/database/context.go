// Package database provides context propagation helpers for database operations.
package database

import (
	"context"

	"gorm.io/gorm"
)

// Context keys for database-related values.
const (
	// requestIDKey is the context key for request ID.
	requestIDKey contextKey = "request_id"
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ScopedDB returns a new DB session bound to ctx for cancellation propagation.
func ScopedDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx)
}

// WithContext creates a context carrying the request ID used for log correlation.
func WithContext(ctx context.Context, requestID string) context.Context {
	if requestID != "" {
		ctx = ContextWithRequestID(ctx, requestID)
	}
	return ctx
}
