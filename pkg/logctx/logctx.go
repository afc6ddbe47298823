package logctx

import (
	"context"

	"go.uber.org/zap"
)

// Context keys shared with the gin middlewares, which mirror them into gin.Context.
const (
	LoggerKey  = "logger"
	TraceIDKey = "traceID"
)

// WithLogger returns ctx carrying lg as its request-scoped logger.
func WithLogger(ctx context.Context, lg *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, LoggerKey, lg)
}

// TraceID returns the trace id set by the trace middleware, if any.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tid, _ := ctx.Value(TraceIDKey).(string)
	return tid
}

// FromCtx returns a logger from context if set, otherwise attempts to enrich
// base with trace_id from context values. gin.Context satisfies context.Context
// and exposes its keys through Value, so handlers pass it directly.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	if tid := TraceID(ctx); tid != "" {
		return base.With("trace_id", tid)
	}
	return base
}
