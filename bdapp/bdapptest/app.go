// Package bdapptest provides test helpers for bdapp applications.
//
// It constructs the identical DI graph as [bdapp.NewApp] but uses
// [fxtest.App] which fails the test immediately on DI errors.
//
// Example:
//
//	bdapptest.SetBaseEnv(t, 18081)
//	app := bdapptest.New[TestEnv](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package bdapptest

import (
	"testing"

	"github.com/advdv/bdispatch/bdapp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing bdapp applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [bdapp.NewApp]. Extra fx options can populate
// variables from the graph, like fx.Populate.
func New[E bdapp.Environment](t testing.TB, routing any, opts ...bdapp.Option) *App {
	return &App{App: fxtest.New(t, bdapp.FxOptions[E](routing, opts...)...)}
}

// Populate is a shorthand for bdapp.WithFx(fx.Populate(targets...)).
func Populate(targets ...any) bdapp.Option {
	return bdapp.WithFx(fx.Populate(targets...))
}
