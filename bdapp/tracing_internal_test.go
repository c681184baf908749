package bdapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx/fxtest"
)

func TestExporterSpanExporter(t *testing.T) {
	ctx := context.Background()

	for _, x := range []Exporter{ExporterStdout, ""} {
		exp, err := x.spanExporter(ctx)
		require.NoError(t, err, x)
		require.NotNil(t, exp, x)
	}

	_, err := Exporter("invalid").spanExporter(ctx)
	require.ErrorContains(t, err, `unsupported exporter "invalid" (supported: stdout, xrayudp, none)`)
}

func TestExporterResource(t *testing.T) {
	res, err := ExporterStdout.resource(context.Background(), "my-service")
	require.NoError(t, err)

	v, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "my-service", v.AsString())
}

func TestNewPropagator(t *testing.T) {
	_, isXRay := NewPropagator(stubEnv{otelExp: ExporterXRayUDP}).(xray.Propagator)
	assert.True(t, isXRay)

	fields := NewPropagator(stubEnv{}).Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestExporterUnmarshalText(t *testing.T) {
	var x Exporter
	require.NoError(t, x.UnmarshalText([]byte("xrayudp")))
	assert.Equal(t, ExporterXRayUDP, x)

	require.EqualError(t, x.UnmarshalText([]byte("otlp")), `unsupported exporter "otlp" (supported: stdout, xrayudp, none)`)
	assert.Equal(t, ExporterXRayUDP, x)
}

func TestNewTracerProvider(t *testing.T) {
	t.Run("none is a noop provider", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		tp, err := NewTracerProvider(lc, stubEnv{otelExp: ExporterNone})
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		assert.False(t, span.SpanContext().IsValid())
	})

	t.Run("stdout is shut down with the app", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		tp, err := NewTracerProvider(lc, stubEnv{otelExp: ExporterStdout})
		require.NoError(t, err)
		require.IsType(t, &sdktrace.TracerProvider{}, tp)

		lc.RequireStart()
		lc.RequireStop()
	})

	t.Run("unsupported exporter", func(t *testing.T) {
		_, err := NewTracerProvider(fxtest.NewLifecycle(t), stubEnv{otelExp: Exporter("zipkin")})
		require.Error(t, err)
	})
}

func TestWithTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prop := propagation.TraceContext{}

	var traced bool
	handler := withTracing(tp, prop, "svc", "/health")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		traced = trace.SpanFromContext(r.Context()).SpanContext().IsValid()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	assert.True(t, traced)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.False(t, traced)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /items/1", spans[0].Name())
}
