// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

// GinRequestIDKey is the gin.Context key holding the request ID assigned by
// the HTTP logging middleware.
const GinRequestIDKey = "request_id"

const (
	senderIDKey  contextKey = "ctxutil.senderID"
	pageIDKey    contextKey = "ctxutil.pageID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithSenderID adds the page-scoped sender id (PSID) to the context.
func WithSenderID(ctx context.Context, senderID string) context.Context {
	return context.WithValue(ctx, senderIDKey, senderID)
}

// GetSenderID retrieves the sender id from the context.
// Returns the sender id if found, empty string otherwise.
func GetSenderID(ctx context.Context) string {
	if v := ctx.Value(senderIDKey); v != nil {
		if senderID, ok := v.(string); ok && senderID != "" {
			return senderID
		}
	}
	return ""
}

// WithPageID adds the id of the page an entry was delivered for.
func WithPageID(ctx context.Context, pageID string) context.Context {
	return context.WithValue(ctx, pageIDKey, pageID)
}

// GetPageID retrieves the page id from the context.
func GetPageID(ctx context.Context) string {
	if v := ctx.Value(pageIDKey); v != nil {
		if pageID, ok := v.(string); ok && pageID != "" {
			return pageID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is typically generated per webhook request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}
