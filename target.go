package bdispatch

import "io"

// Target is anything a router can hand back: another router to continue routing with, or a terminal
// value that produces the response. The set of shapes is closed:
//
//   - a [Router] (all routers in this package, or any router lifted with [Next])
//   - a [Handler] (all handlers in this package, [HandlerFunc], or any handler lifted with [Handle])
//   - [Text], [Binary] or a reader lifted with [Stream]
//   - a status [Code]
//
// A nil Target means "not found".
type Target interface {
	isTarget()
}

// Text is a plain-text response body.
type Text string

func (Text) isTarget() {}

// Binary is an application/octet-stream response body.
type Binary []byte

func (Binary) isTarget() {}

type streamTarget struct{ r io.Reader }

func (streamTarget) isTarget() {}

// Stream turns a reader into a Target. The body is copied to the client without a Content-Length. If the
// reader is also an io.Closer it is closed once the response ends.
func Stream(r io.Reader) Target {
	return streamTarget{r}
}

type routerTarget struct{ Router }

func (routerTarget) isTarget() {}

// Next lifts a custom router into a Target.
func Next(r Router) Target {
	return routerTarget{r}
}

type handlerTarget struct{ Handler }

func (handlerTarget) isTarget() {}

// Handle lifts a custom handler into a Target.
func Handle(h Handler) Target {
	return handlerTarget{h}
}
