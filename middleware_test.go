package bdispatch_test

import (
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/internal/example"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapWithoutMiddleware(t *testing.T) {
	var called bool
	inner := bdispatch.HandlerFunc(func(*bdispatch.Context, *bdispatch.Env) error {
		called = true
		return nil
	})

	require.NoError(t, bdispatch.Wrap(inner)(nil, nil))
	assert.True(t, called)
}

func TestWrapOrder(t *testing.T) {
	var res string
	inner := bdispatch.HandlerFunc(func(*bdispatch.Context, *bdispatch.Env) error {
		res += "inner"
		return errors.New("inner error")
	})

	mw := func(name string) bdispatch.Middleware {
		return func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
			return func(c *bdispatch.Context, env *bdispatch.Env) error {
				res += name + "("
				err := next(c, env)
				res += ")" + name

				return fmt.Errorf("%s(%w)", name, err)
			}
		}
	}

	err := bdispatch.Wrap(inner, mw("1"), mw("2"), mw("3"))(nil, nil)
	assert.Equal(t, "1(2(3(inner)3)2)1", res)
	require.Error(t, err)
	assert.Equal(t, "1(2(3(inner error)))", err.Error())
}

func TestDispatcherMiddleware(t *testing.T) {
	var logged *slog.Logger
	root := bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "/ok", Target: bdispatch.HandlerFunc(func(c *bdispatch.Context, _ *bdispatch.Env) error {
			logged = example.Log(c)
			assert.Equal(t, logged, example.Log(c.Request.Context()))

			fmt.Fprint(c.Writer, "ok")
			return nil
		})},
	})

	d := bdispatch.New(root, bdispatch.WithMiddleware(example.Middleware(slog.Default())))
	d.Use(func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
		return func(c *bdispatch.Context, env *bdispatch.Env) error {
			c.Writer.Header().Set("X-Request-ID", "req-123")
			return next(c, env)
		}
	})

	rec := serve(d, http.MethodGet, "/ok")
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.NotNil(t, logged)

	t.Run("wraps status code answers too", func(t *testing.T) {
		rec := serve(d, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestMiddlewareSeesHandlerError(t *testing.T) {
	var seen bdispatch.Code
	d := bdispatch.New(bdispatch.HandlerFunc(func(*bdispatch.Context, *bdispatch.Env) error {
		return bdispatch.NewError(bdispatch.CodeConflict, errors.New("exists"))
	}))

	d.Use(func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
		return func(c *bdispatch.Context, env *bdispatch.Env) error {
			err := next(c, env)
			seen = bdispatch.CodeOf(err)

			return err
		}
	})

	rec := serve(d, http.MethodGet, "/")
	assert.Equal(t, bdispatch.CodeConflict, seen)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "409 Conflict", rec.Body.String())
}
