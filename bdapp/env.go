package bdapp

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	readinessCheckPath() string
	metricsPath() string
	logLevel() zapcore.Level
	otelExporter() Exporter
	maxRoutingSteps() int
	chunkSize() int
	requestTimeout() time.Duration
}

// ByteSize is a number of bytes that is configured in human form, like "64KiB" or "1 MB".
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid byte size %q", text)
	}

	*b = ByteSize(n)

	return nil
}

// String formats the size the way it is configured.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Exporter names where traces go, configured with BD_OTEL_EXPORTER.
type Exporter string

const (
	// ExporterStdout pretty prints spans to stdout.
	ExporterStdout Exporter = "stdout"
	// ExporterXRayUDP sends spans to the X-Ray daemon and uses X-Ray ids and propagation.
	ExporterXRayUDP Exporter = "xrayudp"
	// ExporterNone disables tracing.
	ExporterNone Exporter = "none"
)

// UnmarshalText implements encoding.TextUnmarshaler. Unknown exporters are rejected.
func (x *Exporter) UnmarshalText(text []byte) error {
	switch v := Exporter(text); v {
	case ExporterStdout, ExporterXRayUDP, ExporterNone:
		*x = v
		return nil
	default:
		return errUnsupportedExporter(v)
	}
}

func errUnsupportedExporter(x Exporter) error {
	return errors.Newf("unsupported exporter %q (supported: stdout, xrayudp, none)", string(x))
}

// BaseEnvironment contains the environment variables every bdapp needs.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port               int           `env:"BD_PORT,required"`
	ServiceName        string        `env:"BD_SERVICE_NAME,required"`
	ReadinessCheckPath string        `env:"BD_READINESS_CHECK_PATH" envDefault:"/healthz"`
	MetricsPath        string        `env:"BD_METRICS_PATH" envDefault:"/metrics"`
	LogLevel           zapcore.Level `env:"BD_LOG_LEVEL" envDefault:"info"`
	OtelExporter       Exporter      `env:"BD_OTEL_EXPORTER" envDefault:"stdout"`
	MaxRoutingSteps    int           `env:"BD_MAX_ROUTING_STEPS" envDefault:"50"`
	ChunkSize          ByteSize      `env:"BD_CHUNK_SIZE" envDefault:"64KiB"`
	RequestTimeout     time.Duration `env:"BD_REQUEST_TIMEOUT" envDefault:"30s"`
	// AWSRegion is only consulted by the AWS SDK; it is optional so the app also runs outside AWS.
	AWSRegion string `env:"AWS_REGION"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) readinessCheckPath() string {
	return e.ReadinessCheckPath
}

func (e BaseEnvironment) metricsPath() string {
	return e.MetricsPath
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() Exporter {
	return e.OtelExporter
}

func (e BaseEnvironment) maxRoutingSteps() int {
	return e.MaxRoutingSteps
}

func (e BaseEnvironment) chunkSize() int {
	return int(e.ChunkSize)
}

func (e BaseEnvironment) requestTimeout() time.Duration {
	return e.RequestTimeout
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type. Overrides take precedence
// over the process environment.
func ParseEnv[E Environment](overrides ...map[string]string) func() (E, error) {
	return func() (e E, err error) {
		vars := env.ToMap(os.Environ())
		for _, o := range overrides {
			for k, v := range o {
				vars[k] = v
			}
		}

		if err := env.ParseWithOptions(&e, env.Options{Environment: vars}); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
