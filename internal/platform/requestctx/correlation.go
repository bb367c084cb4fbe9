// Package requestctx carries per-request diagnostic state on contexts.
package requestctx

import "context"

// correlationIDContextKey is the context key for the request correlation id.
type correlationIDContextKey struct{}

// traceEnabledContextKey is the context key for the verbose-trace flag.
type traceEnabledContextKey struct{}

// WithCorrelationID stores a correlation id in context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDContextKey{}, correlationID)
}

// CorrelationIDFromContext returns the correlation id stored in context.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(correlationIDContextKey{}).(string)
	return value
}

// WithTraceEnabled stores the verbose-trace flag in context.
func WithTraceEnabled(ctx context.Context, enabled bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceEnabledContextKey{}, enabled)
}

// TraceEnabledFromContext reports whether verbose step tracing is enabled.
func TraceEnabledFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	value, _ := ctx.Value(traceEnabledContextKey{}).(bool)
	return value
}
