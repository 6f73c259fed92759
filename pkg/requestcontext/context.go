// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	operator := requestcontext.Operator(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithOperator(ctx, operator, caps)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "mintguard/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	operatorKey     struct{}
	capabilitiesKey struct{}
	requestIDKey    struct{}
	requestTimeKey  struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyOperator     = operatorKey{}
	ContextKeyCapabilities = capabilitiesKey{}
	ContextKeyRequestID    = requestIDKey{}
	ContextKeyRequestTime  = requestTimeKey{}
)

// Operator retrieves the authenticated operator address from the context.
// Returns the zero value if not set.
func Operator(ctx context.Context) id.Address {
	if operator, ok := ctx.Value(ContextKeyOperator).(id.Address); ok {
		return operator
	}
	return ""
}

// Capabilities retrieves the operator's capability set from the context.
// Returns an empty set if not set.
func Capabilities(ctx context.Context) id.CapabilitySet {
	if caps, ok := ctx.Value(ContextKeyCapabilities).(id.CapabilitySet); ok {
		return caps
	}
	return id.CapabilitySet{}
}

// WithOperator injects the operator identity and capability set into the context.
func WithOperator(ctx context.Context, operator id.Address, caps id.CapabilitySet) context.Context {
	ctx = context.WithValue(ctx, ContextKeyOperator, operator)
	return context.WithValue(ctx, ContextKeyCapabilities, caps)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
