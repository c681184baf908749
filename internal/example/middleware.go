// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"log/slog"

	"github.com/advdv/bdispatch"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the context.
func Middleware(logs *slog.Logger) bdispatch.Middleware {
	return func(n bdispatch.HandlerFunc) bdispatch.HandlerFunc {
		return func(c *bdispatch.Context, env *bdispatch.Env) error {
			logs := logs.With(slog.String("method", c.Method))

			c.Context = context.WithValue(c.Context, ctxKey("slog"), logs)
			c.Request = c.Request.WithContext(c.Context)

			return n(c, env)
		}
	}
}

func Log(ctx context.Context) *slog.Logger {
	v, _ := ctx.Value(ctxKey("slog")).(*slog.Logger)

	return v
}
