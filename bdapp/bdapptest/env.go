package bdapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bdapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bdapp.BaseEnvironment] env vars to sensible test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BD_SERVICE_NAME: "test"
//   - BD_READINESS_CHECK_PATH: "/health"
//   - BD_OTEL_EXPORTER: "none"
//   - AWS_REGION: "us-east-1"
//   - AWS_ACCESS_KEY_ID: "test"
//   - AWS_SECRET_ACCESS_KEY: "test"
//
// Use the returned [Env] to override individual values:
//
//	bdapptest.SetBaseEnv(t, 18085).ServiceName("items").ChunkSize("4KiB")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BD_PORT", strconv.Itoa(port))
	t.Setenv("BD_SERVICE_NAME", "test")
	t.Setenv("BD_READINESS_CHECK_PATH", "/health")
	t.Setenv("BD_OTEL_EXPORTER", "none")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return &Env{t: t}
}

// ServiceName overrides BD_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_SERVICE_NAME", name)
	return e
}

// ReadinessCheckPath overrides BD_READINESS_CHECK_PATH.
func (e *Env) ReadinessCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_READINESS_CHECK_PATH", path)
	return e
}

// MetricsPath overrides BD_METRICS_PATH.
func (e *Env) MetricsPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_METRICS_PATH", path)
	return e
}

// ChunkSize overrides BD_CHUNK_SIZE.
func (e *Env) ChunkSize(size string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_CHUNK_SIZE", size)
	return e
}

// MaxRoutingSteps overrides BD_MAX_ROUTING_STEPS.
func (e *Env) MaxRoutingSteps(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BD_MAX_ROUTING_STEPS", strconv.Itoa(n))
	return e
}

// RequestTimeout overrides BD_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_REQUEST_TIMEOUT", d)
	return e
}
