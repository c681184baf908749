package bdapp

import (
	"context"
	"time"

	"github.com/advdv/bdispatch"
)

// maxReadHeaderTimeout caps how long a client may take to send its request headers.
const maxReadHeaderTimeout = 5 * time.Second

// TimeoutConfig holds timeout configuration for the HTTP server.
type TimeoutConfig struct {
	// RequestTimeout bounds a single request from accepting the connection to writing the last byte
	// of the response.
	RequestTimeout time.Duration
}

// ServerTimeouts returns the http.Server timeout values. A zero or negative request timeout disables
// all of them.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	timeout := tc.RequestTimeout
	if timeout <= 0 {
		return 0, 0, 0, 0
	}

	readHeaderTimeout = min(timeout, maxReadHeaderTimeout)
	readTimeout = timeout
	writeTimeout = timeout
	idleTimeout = timeout

	return
}

// WithRequestDeadline returns middleware that bounds the request context by the timeout. Handlers and
// the I/O they perform observe the deadline through the context. The previous context is put back once
// the handler returns.
func WithRequestDeadline(timeout time.Duration) bdispatch.Middleware {
	return func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
		if timeout <= 0 {
			return next
		}

		return func(c *bdispatch.Context, env *bdispatch.Env) error {
			prevCtx, prevReq := c.Context, c.Request

			ctx, cancel := context.WithTimeout(prevCtx, timeout)
			defer func() {
				cancel()
				c.Context, c.Request = prevCtx, prevReq
			}()

			c.Context = ctx
			c.Request = c.Request.WithContext(ctx)

			return next(c, env)
		}
	}
}
