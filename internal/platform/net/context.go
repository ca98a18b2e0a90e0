// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyCaller ctxKey = "caller"

// WithRequest annotates context with a request id readable by chi and RequestID
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithCaller records who issued a control command (token label, "scheduler", "cli")
func WithCaller(ctx context.Context, caller string) context.Context {
	if caller == "" {
		return ctx
	}
	return context.WithValue(ctx, keyCaller, caller)
}

// Caller returns the command issuer on the context, or "" when unknown
func Caller(ctx context.Context) string {
	if v, ok := ctx.Value(keyCaller).(string); ok {
		return v
	}
	return ""
}
