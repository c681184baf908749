package bdispatch

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

// Outcome summarizes one dispatched request.
type Outcome struct {
	Method   string
	Status   int
	Steps    int
	Duration time.Duration
}

// Observer is told about every request once it is done.
type Observer interface {
	Observe(o Outcome)
}

// ObserverFunc allows casting a function to implement [Observer].
type ObserverFunc func(o Outcome)

// Observe implements [Observer].
func (f ObserverFunc) Observe(o Outcome) { f(o) }

type nopObserver struct{}

func (nopObserver) Observe(Outcome) {}

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithMaxRoutingSteps bounds the number of routers one request may pass through.
func WithMaxRoutingSteps(n int) Option {
	return func(d *Dispatcher) { d.maxSteps = n }
}

// WithCodeHandlers sets the default status code handlers. The map is copied.
func WithCodeHandlers(handlers map[Code]Target) Option {
	return func(d *Dispatcher) {
		for k, v := range handlers {
			d.codeHandlers[k] = v
		}
	}
}

// WithLogger sets the logger for the error and warning channels.
func WithLogger(logs Logger) Option {
	return func(d *Dispatcher) { d.logs = logs }
}

// WithObserver sets the observer that is told about every request.
func WithObserver(obs Observer) Option {
	return func(d *Dispatcher) { d.observer = obs }
}

// WithMiddleware is the option form of [Dispatcher.Use].
func WithMiddleware(mw ...Middleware) Option {
	return func(d *Dispatcher) { d.middlewares.list = append(d.middlewares.list, mw...) }
}

// Dispatcher serves http requests by walking a router graph to a terminal target and writing it. It is
// safe for concurrent use once it is serving.
type Dispatcher struct {
	root         Target
	maxSteps     int
	codeHandlers map[Code]Target
	logs         Logger
	observer     Observer
	middlewares  struct {
		captured atomic.Bool
		list     []Middleware
	}
}

// New creates a dispatcher that starts routing every request at root.
func New(root Target, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		root:         root,
		maxSteps:     DefaultMaxRoutingSteps,
		codeHandlers: make(map[Code]Target),
		logs:         NewStdLogger(log.Default()),
		observer:     nopObserver{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Use allows providing of middleware. It must be called before the first request is served.
func (d *Dispatcher) Use(mw ...Middleware) {
	if d.middlewares.captured.Load() {
		panic("bdispatch: cannot call Use() after serving requests")
	}

	d.middlewares.list = append(d.middlewares.list, mw...)
}

// ServeHTTP makes the dispatcher implement the http.Handler interface.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.middlewares.captured.Store(true)

	start, rw := time.Now(), newResponseWriter(w)

	var env *Env
	defer func() {
		o := Outcome{Method: r.Method, Status: rw.status, Duration: time.Since(start)}
		if o.Status == 0 {
			o.Status = http.StatusOK
		}

		if env != nil {
			o.Steps = env.Steps
		}

		d.observer.Observe(o)
	}()

	u, err := requestURL(r)
	if err != nil {
		d.logs.LogBadRequest(err)
		_ = writeDefault(rw, CodeBadRequest)

		return
	}

	env = NewEnv(u, d.codeHandlers)
	c := NewContext(rw, r, u)

	var target Target
	if err := safely(func() (err error) {
		target, err = Walk(d.root, env, c, d.maxSteps)
		return err
	}); err != nil {
		d.logs.LogHandlerError(err)
		target = CodeInternalServerError
	}

	d.serve(c, env, target)
}

// serve handles the target. A failure carrying a status code is answered with that status, any other
// failure is logged and answered with a 500. A failure while answering is logged as a warning and gets
// a bare 500. Headers left behind by the failed attempt are dropped before answering.
func (d *Dispatcher) serve(c *Context, env *Env, target Target) {
	reqCtx := c.Context
	h := Wrap(HandlerFunc(func(c *Context, env *Env) error {
		return respond(c, env, target)
	}), d.middlewares.list...)

	err := safely(func() error { return h(c, env) })
	if err == nil || peerGone(reqCtx, c.Writer, err) {
		return
	}

	code := CodeOf(err)
	if code == CodeUnknown {
		d.logs.LogHandlerError(err)
		code = CodeInternalServerError
	}

	if err = safely(func() error {
		if HeadersSent(c.Writer) {
			return errors.Wrapf(errHeadersSent, "answer %d", int(code))
		}

		clear(c.Writer.Header())

		return respond(c, env, code)
	}); err != nil && !peerGone(reqCtx, c.Writer, err) {
		d.logs.LogFallbackError(err)
		writeFallback(c.Writer)
	}
}

// peerGone reports whether err means nobody is listening for the answer anymore: the connection broke
// after the headers went out, or the client canceled the request itself.
func peerGone(reqCtx context.Context, w http.ResponseWriter, err error) bool {
	if !IsPrematureClose(err) {
		return false
	}

	return HeadersSent(w) || reqCtx.Err() != nil
}

// requestURL rebuilds the absolute url of the request.
func requestURL(r *http.Request) (*url.URL, error) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	uri := r.RequestURI
	if !strings.HasPrefix(uri, "/") {
		uri = r.URL.RequestURI()
	}

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}

	u, err := url.Parse(scheme + "://" + host + uri)
	if err != nil {
		return nil, errors.Wrap(err, "parse request url")
	}

	return u, nil
}
