// Package bdapp provides a batteries-included application around a [bdispatch.Dispatcher].
//
// # Overview
//
// bdapp handles the boilerplate of running a dispatcher as a service: environment parsing,
// structured logging, OpenTelemetry tracing, Prometheus metrics, AWS SDK clients and graceful
// shutdown. A complete application can be created in a single call:
//
//	bdapp.NewApp[Env](func(rt *bdapp.Runtime[Env], h *Handlers) bdispatch.Target {
//	    return bdispatch.NewPathRouter(nil, bdispatch.Table{
//	        {Key: "@GET /items", Target: bdispatch.HandlerFunc(h.ListItems)},
//	        rt.Reverser().Entry("get-item", "@GET /items/%:id", bdispatch.HandlerFunc(h.GetItem)),
//	    })
//	},
//	    bdapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// The routing constructor returns the root target. It is an fx constructor, so it can request
// anything the graph provides.
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bdapp.BaseEnvironment
//	    Bucket string `env:"BUCKET,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                 | Required | Default  | Description                                   |
//	|--------------------------|----------|----------|-----------------------------------------------|
//	| BD_PORT                  | Yes      | -        | Port the HTTP server listens on               |
//	| BD_SERVICE_NAME          | Yes      | -        | Service name for logging and tracing          |
//	| BD_READINESS_CHECK_PATH  | No       | /healthz | Path of the readiness check                   |
//	| BD_METRICS_PATH          | No       | /metrics | Path of the Prometheus endpoint               |
//	| BD_LOG_LEVEL             | No       | info     | Log level (debug, info, warn, error)          |
//	| BD_OTEL_EXPORTER         | No       | stdout   | Trace exporter: "stdout", "xrayudp" or "none" |
//	| BD_MAX_ROUTING_STEPS     | No       | 50       | Routers one request may pass through          |
//	| BD_CHUNK_SIZE            | No       | 64KiB    | Buffer size for file bodies, e.g. "1MiB"      |
//	| BD_REQUEST_TIMEOUT       | No       | 30s      | Deadline of a single request, 0 disables it   |
//	| AWS_REGION               | No       | -        | AWS region for the SDK clients                |
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into
// handler constructors via fx:
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Reverser] and [Runtime.Reverse] name keys and build urls for them
//   - [Runtime.FileOptions] carries the configured chunk size to file handlers
//   - [Runtime.Secret] retrieves secrets from AWS Secrets Manager
//
// # Secrets
//
// [Runtime.Secret] retrieves secrets from AWS Secrets Manager with caching. A JSON path in
// gjson syntax selects a value from a JSON secret:
//
//	password, err := h.rt.Secret(ctx, "db-credentials", "password")
//
// [SecretGuard] uses a secret as bearer token in front of a part of the route graph:
//
//	{Key: "/admin", Target: rt.Guard("admin-token", "", admin)}
//
// # Logging
//
// [Log] returns the request's zap logger with the trace and span ids attached. Errors the
// dispatcher cannot answer on its own are logged by the "bdispatch.bdapp" logger.
//
// # Observability
//
// Every request except the readiness check is traced with otelhttp, and every request is counted
// by [Metrics]: bdispatch_requests_total, bdispatch_request_duration_seconds and
// bdispatch_routing_steps. AWS SDK calls are traced through otelaws.
//
// # Testing
//
// Package bdapptest builds the same graph on fxtest:
//
//	bdapptest.SetBaseEnv(t, 18081)
//	app := bdapptest.New[Env](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package bdapp
