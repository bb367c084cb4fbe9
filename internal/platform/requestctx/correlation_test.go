package requestctx

import (
	"context"
	"testing"
)

func TestCorrelationIDFromContextRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr-42")
	if got := CorrelationIDFromContext(ctx); got != "corr-42" {
		t.Fatalf("CorrelationIDFromContext = %q, want %q", got, "corr-42")
	}
}

func TestCorrelationIDFromContextEmpty(t *testing.T) {
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestCorrelationIDNilContext(t *testing.T) {
	if got := CorrelationIDFromContext(nil); got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
	ctx := WithCorrelationID(nil, "corr-99")
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got := CorrelationIDFromContext(ctx); got != "corr-99" {
		t.Fatalf("CorrelationIDFromContext = %q, want %q", got, "corr-99")
	}
}

func TestTraceEnabledRoundTrip(t *testing.T) {
	ctx := WithTraceEnabled(context.Background(), true)
	if !TraceEnabledFromContext(ctx) {
		t.Fatal("expected trace enabled")
	}
	if TraceEnabledFromContext(context.Background()) {
		t.Fatal("expected trace disabled by default")
	}
	if TraceEnabledFromContext(nil) {
		t.Fatal("expected trace disabled for nil context")
	}
}
