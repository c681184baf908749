package bdapp

import (
	"context"
	"net/http"

	"github.com/advdv/bdispatch"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
	// Environ overrides environment variables, e.g. with values from command line flags.
	Environ map[string]string
}

// Option configures the App.
type Option func(*AppConfig)

// runtimeProviderParams holds dependencies for Runtime.
type runtimeProviderParams[E Environment] struct {
	fx.In

	Env          E
	Reverser     *bdispatch.Reverser
	SecretReader SecretReader
	Transport    http.RoundTripper
}

// WithAWSClient registers an AWS SDK v2 client for dependency injection. Clients are injected
// directly into handler and routing constructors via fx:
//
//	bdapp.WithAWSClient(func(cfg aws.Config) *s3.Client {
//	    return s3.NewFromConfig(cfg)
//	})
func WithAWSClient[T any](factory func(aws.Config) T) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, AWSClientProvider(factory))
	}
}

// WithEnv sets environment variables for the app without touching the process environment.
func WithEnv(vars map[string]string) Option {
	return func(c *AppConfig) {
		if c.Environ == nil {
			c.Environ = make(map[string]string, len(vars))
		}
		for k, v := range vars {
			c.Environ[k] = v
		}
	}
}

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthTarget sets what answers the readiness check.
func WithHealthTarget(t bdispatch.Target) Option {
	return func(c *AppConfig) {
		c.HealthTarget = t
	}
}

// WithCodeHandlers sets the dispatcher's default status code handlers.
func WithCodeHandlers(handlers map[bdispatch.Code]bdispatch.Target) Option {
	return func(c *AppConfig) {
		c.CodeHandlers = handlers
	}
}

// WithMiddleware adds dispatcher middleware.
func WithMiddleware(mw ...bdispatch.Middleware) Option {
	return func(c *AppConfig) {
		c.Middleware = append(c.Middleware, mw...)
	}
}

// newRegistry creates the registry the metrics endpoint serves, with the runtime collectors
// registered.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// FxOptions returns the options that make up the app's dependency graph. The routing constructor
// must return the root [bdispatch.Target]; it can request anything provided via fx options.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 16+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E](cfg.Environ)),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(provideAWSConfig),
		fx.Provide(func(cfg aws.Config) (SecretReader, error) {
			return NewAWSSecretReader(cfg)
		}),
		fx.Provide(fx.Annotate(newRegistry,
			fx.As(new(prometheus.Registerer)),
			fx.As(new(prometheus.Gatherer)))),
		fx.Provide(NewMetrics),
		fx.Provide(NewHTTPTransport),
		fx.Provide(NewHTTPClient),
		fx.Provide(bdispatch.NewReverser),
		fx.Provide(func(p runtimeProviderParams[E]) *Runtime[E] {
			return NewRuntime(p.Env, RuntimeParams{
				Reverser:     p.Reverser,
				SecretReader: p.SecretReader,
				Transport:    p.Transport,
			})
		}),
		fx.Provide(routing),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewDispatcher),
		fx.Provide(NewServer),
		fx.Invoke(startServerHook),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// Example:
//
//	bdapp.NewApp[Env](func(rt *bdapp.Runtime[Env], h *Handlers) bdispatch.Target {
//	    return bdispatch.NewPathRouter(nil, bdispatch.Table{
//	        rt.Reverser().Entry("get-item", "@GET /items/%:id", bdispatch.HandlerFunc(h.GetItem)),
//	    })
//	},
//	    bdapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
