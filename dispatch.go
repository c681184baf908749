package bdispatch

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// DefaultMaxRoutingSteps bounds the number of routers a single request may pass through.
const DefaultMaxRoutingSteps = 50

// DefaultChunkSize is the size of the pieces response bodies are streamed in.
const DefaultChunkSize = 64 * 1024

const (
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeBinary = "application/octet-stream"
)

var errHeadersSent = errors.New("bdispatch: response headers already sent")

// Walk drives routing: as long as the current value is a router it is asked for the next value. Every
// router visited counts as one step and exceeding maxSteps ends the walk with [CodeLoopDetected], so
// cyclic router graphs are safe. A nil result becomes [CodeNotFound]. A maxSteps of zero or less means
// [DefaultMaxRoutingSteps].
func Walk(root Target, env *Env, c *Context, maxSteps int) (Target, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxRoutingSteps
	}

	cur := root
	for {
		r, ok := asRouter(cur)
		if !ok {
			break
		}

		env.Steps++
		if env.Steps > maxSteps {
			return CodeLoopDetected, nil
		}

		next, err := r.Route(env, c)
		if err != nil {
			return nil, errors.Wrapf(err, "route step %d", env.Steps)
		}

		cur = next
	}

	if cur == nil {
		return CodeNotFound, nil
	}

	return cur, nil
}

func asRouter(t Target) (Router, bool) {
	switch t := t.(type) {
	case routerTarget:
		return t.Router, t.Router != nil
	case Router:
		return t, true
	default:
		return nil, false
	}
}

// respond writes the response for a resolved target. A code gets exactly one lookup into the status code
// handlers in effect for the request.
func respond(c *Context, env *Env, t Target) error {
	code, ok := t.(Code)
	if !ok {
		return write(c, env, t, CodeOK)
	}

	h, ok := env.CodeHandler(code)
	if !ok {
		return writeDefault(c.Writer, code)
	}

	return write(c, env, h, code)
}

// write produces the response for one target shape. Status applies to body shapes only, handlers pick
// their own.
func write(c *Context, env *Env, t Target, status Code) error {
	switch t := t.(type) {
	case handlerTarget:
		if t.Handler == nil {
			return ErrInvalidHandler
		}

		return t.Handle(c, env)
	case Handler:
		return t.Handle(c, env)
	case Text:
		return writeBody(c.Writer, status, contentTypeText, []byte(t))
	case Binary:
		return writeBody(c.Writer, status, contentTypeBinary, t)
	case streamTarget:
		return writeStream(c, status, contentTypeBinary, t.r)
	case Code:
		return writeDefault(c.Writer, t)
	default:
		return errors.Wrapf(ErrInvalidHandler, "%T", t)
	}
}

func writeBody(w http.ResponseWriter, status Code, contentType string, body []byte) error {
	return writeWithHeaders(w, int(status), contentType, body, nil)
}

// writeDefault answers with the status and its reason phrase as a plain text body.
func writeDefault(w http.ResponseWriter, code Code) error {
	return writeBody(w, code, contentTypeText, []byte(code.Error()))
}

func writeStream(c *Context, status Code, contentType string, r io.Reader) error {
	if rc, ok := r.(io.Closer); ok {
		defer rc.Close()
	}

	if r == nil {
		return errors.Wrap(ErrInvalidHandler, "nil stream")
	}

	hdr := c.Writer.Header()
	hdr.Set("Content-Type", contentType)
	hdr.Del("Content-Length")
	c.Writer.WriteHeader(int(status))

	return copyBody(c, r, DefaultChunkSize)
}

// copyBody forwards r to the response in chunks of the given size. The peer going away is not an
// error.
func copyBody(c *Context, r io.Reader, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	_, err := io.CopyBuffer(c.Writer, r, make([]byte, chunkSize))
	switch {
	case err == nil:
		return nil
	case IsPrematureClose(err), errors.Is(c.Err(), context.Canceled):
		return nil
	default:
		return errors.Wrap(err, "copy body")
	}
}

// writeFallback is the answer of last resort. It never fails and never panics.
func writeFallback(w http.ResponseWriter) {
	defer func() { _ = recover() }()

	if HeadersSent(w) {
		return
	}

	clear(w.Header())
	_ = writeDefault(w, CodeInternalServerError)
}

// safely runs fn, turning a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		switch p := recover().(type) {
		case nil:
		case error:
			err = errors.Wrap(p, "panic")
		default:
			err = errors.Newf("panic: %v", p)
		}
	}()

	return fn()
}
