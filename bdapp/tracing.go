package bdapp

import (
	"context"
	"net/http"
	"time"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

const tracingInitTimeout = 5 * time.Second

// NewTracerProvider builds the tracer provider for the configured exporter. The provider is flushed
// and shut down when the app stops. With [ExporterNone] nothing is recorded.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	exp := env.otelExporter()
	if exp == ExporterNone {
		return noop.NewTracerProvider(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), tracingInitTimeout)
	defer cancel()

	opts, err := exp.providerOptions(ctx, env.serviceName())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(opts...)
	lc.Append(fx.StopHook(tp.Shutdown))

	return tp, nil
}

// NewPropagator returns the propagator that matches the exporter.
func NewPropagator(env Environment) propagation.TextMapPropagator {
	return env.otelExporter().propagator()
}

func (x Exporter) providerOptions(ctx context.Context, serviceName string) ([]sdktrace.TracerProviderOption, error) {
	spans, err := x.spanExporter(ctx)
	if err != nil {
		return nil, err
	}

	res, err := x.resource(ctx, serviceName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect trace resource")
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(spans)),
		sdktrace.WithResource(res),
	}

	if x == ExporterXRayUDP {
		opts = append(opts, sdktrace.WithIDGenerator(xray.NewIDGenerator()))
	}

	return opts, nil
}

func (x Exporter) spanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch x {
	case ExporterStdout, "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterXRayUDP:
		return xrayudp.NewSpanExporter(ctx)
	default:
		return nil, errors.Wrap(errUnsupportedExporter(x), "failed to create span exporter")
	}
}

// resource describes the process: the Lambda function when exporting to X-Ray, the service name
// otherwise.
func (x Exporter) resource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	if x == ExporterXRayUDP {
		return lambda.NewResourceDetector().Detect(ctx)
	}

	return resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)), nil
}

func (x Exporter) propagator() propagation.TextMapPropagator {
	if x == ExporterXRayUDP {
		return xray.Propagator{}
	}

	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// withTracing starts a server span per request, named after the method and path. Requests to one of
// the excluded paths are not traced.
func withTracing(
	tp trace.TracerProvider, prop propagation.TextMapPropagator, serviceName string, excludePaths ...string,
) func(http.Handler) http.Handler {
	excluded := lo.Keyify(excludePaths)

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(prop),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				_, skip := excluded[r.URL.Path]
				return !skip
			}),
		)
	}
}
