package bdapp

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/advdv/bdispatch"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	// HealthTarget answers the readiness check, it defaults to a plain "ok".
	HealthTarget bdispatch.Target
	// CodeHandlers are the dispatcher's default status code handlers.
	CodeHandlers map[bdispatch.Code]bdispatch.Target
	// Middleware runs around every resolved handler, after the request logger and deadline.
	Middleware []bdispatch.Middleware
}

// DispatcherParams holds the dependencies for creating the dispatcher.
type DispatcherParams struct {
	fx.In

	Env      Environment
	Root     bdispatch.Target
	Logger   *zap.Logger
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
}

// NewDispatcher creates the dispatcher with the health and metrics endpoints in front of the app's
// root target.
func NewDispatcher(params DispatcherParams, cfg ServerConfig) *bdispatch.Dispatcher {
	health := cfg.HealthTarget
	if health == nil {
		health = bdispatch.Text("ok")
	}

	root := bdispatch.NewPathRouter(params.Root, bdispatch.Table{
		{Key: "@GET " + params.Env.readinessCheckPath(), Target: health},
		{Key: "@GET " + params.Env.metricsPath(), Target: bdispatch.Mount(
			promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))},
	})

	d := bdispatch.New(root,
		bdispatch.WithLogger(NewDispatchLogger(params.Logger)),
		bdispatch.WithObserver(params.Metrics),
		bdispatch.WithMaxRoutingSteps(params.Env.maxRoutingSteps()),
		bdispatch.WithCodeHandlers(cfg.CodeHandlers),
	)

	d.Use(RequestLogger(params.Logger))
	d.Use(WithRequestDeadline(params.Env.requestTimeout()))
	d.Use(cfg.Middleware...)

	return d
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Dispatcher *bdispatch.Dispatcher
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server that traces every request except the readiness check.
func NewServer(params ServerParams) *http.Server {
	healthPath := params.Env.readinessCheckPath()
	handler := withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(params.Dispatcher)

	tc := TimeoutConfig{RequestTimeout: params.Env.requestTimeout()}
	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return errors.Wrap(err, "failed to listen")
			}

			logger.Info("starting server", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}
