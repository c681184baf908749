package bdapp

import (
	"net/http"

	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// NewHTTPTransport creates an HTTP RoundTripper instrumented with OpenTelemetry tracing.
// Use this when a handler calls other services and the calls should show up in its trace.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
	)
}

// NewHTTPClient creates an *http.Client that uses the instrumented transport.
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t}
}

// newRequestBuilder creates a base [requests.Builder] with the instrumented transport.
// Handlers access it via [Runtime.NewRequest].
func newRequestBuilder(t http.RoundTripper) *requests.Builder {
	return requests.New().Transport(t)
}
