package bdapp

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

const awsConfigTimeout = 10 * time.Second

// NewAWSConfig loads the default AWS SDK v2 configuration.
func NewAWSConfig(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// provideAWSConfig is an fx provider that loads AWS config with a timeout.
// It instruments the config with OpenTelemetry so calls made while serving a request show up in
// its trace.
func provideAWSConfig(tp trace.TracerProvider, prop propagation.TextMapPropagator) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()
	cfg, err := NewAWSConfig(ctx)
	if err != nil {
		return cfg, err
	}
	otelaws.AppendMiddlewares(&cfg.APIOptions,
		otelaws.WithTracerProvider(tp),
		otelaws.WithTextMapPropagator(prop),
	)
	return cfg, nil
}

// AWSClientProvider creates an fx.Option that provides an AWS client for injection. The factory
// receives a copy of the app's aws.Config:
//
//	bdapp.AWSClientProvider(func(cfg aws.Config) *s3.Client {
//	    return s3.NewFromConfig(cfg)
//	})
func AWSClientProvider[T any](factory func(aws.Config) T) fx.Option {
	return fx.Provide(func(cfg aws.Config) T {
		return factory(cfg.Copy())
	})
}
