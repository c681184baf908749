package bdapp

import (
	"context"

	"github.com/advdv/bdispatch"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyRequestDep ctxKey = iota
)

// requestDep holds request-scoped dependencies available via context.
// App-scoped dependencies (env, reverser, secrets) are accessed via Runtime instead.
type requestDep struct {
	logger *zap.Logger
}

// withRequestDep injects dependencies into the request context.
func withRequestDep(d *requestDep) bdispatch.Middleware {
	return func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
		return func(c *bdispatch.Context, env *bdispatch.Env) error {
			c.Context = context.WithValue(c.Context, ctxKeyRequestDep, d)
			c.Request = c.Request.WithContext(c.Context)

			return next(c, env)
		}
	}
}

// RequestLogger returns middleware that makes the logger available to handlers through [Log].
func RequestLogger(l *zap.Logger) bdispatch.Middleware {
	return withRequestDep(&requestDep{logger: l})
}

func requestDepFromContext(ctx context.Context) *requestDep {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bdapp: requestDep not found in context; is the middleware configured?")
	}
	return d
}

// Log returns a trace-correlated zap logger from the context.
func Log(ctx context.Context) *zap.Logger {
	d := requestDepFromContext(ctx)
	return d.logger.With(traceFields(ctx)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	sc := span.SpanContext()
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
