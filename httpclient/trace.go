package httpclient

import (
	"context"
	"os"
)

// W3C trace context headers.
const (
	HeaderTraceParent = "traceparent"
	HeaderTraceState  = "tracestate"
)

type traceContextKey struct{}

// TraceContext holds W3C distributed trace context propagated from a parent
// process.
type TraceContext struct {
	TraceParent string
	TraceState  string
}

// SetupTracingFromEnv reads TRACEPARENT and TRACESTATE from the environment
// and stores them in the context. NewRequest forwards them on every request.
func SetupTracingFromEnv(ctx context.Context) context.Context {
	traceparent := os.Getenv("TRACEPARENT")
	if traceparent == "" {
		return ctx
	}
	return WithTraceContext(ctx, &TraceContext{
		TraceParent: traceparent,
		TraceState:  os.Getenv("TRACESTATE"),
	})
}

// WithTraceContext returns a copy of ctx carrying tc.
func WithTraceContext(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTraceContext retrieves the TraceContext from the context, if present.
func GetTraceContext(ctx context.Context) *TraceContext {
	tc, _ := ctx.Value(traceContextKey{}).(*TraceContext)
	return tc
}
