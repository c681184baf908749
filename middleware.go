package bdispatch

// Middleware for cross-cutting concerns around the resolved handler.
type Middleware func(HandlerFunc) HandlerFunc

// Wrap takes the inner handler h and wraps it with middleware. The order is that of the Gorilla and Chi router. That
// is: the middleware provided first is called first and is the "outer" most wrapping, the middleware provided last
// will be the "inner most" wrapping (closest to the handler).
func Wrap(h Handler, m ...Middleware) HandlerFunc {
	inner, ok := h.(HandlerFunc)
	if !ok {
		inner = h.Handle
	}

	if len(m) < 1 {
		return inner
	}

	wrapped := inner
	for i := len(m) - 1; i >= 0; i-- {
		wrapped = m[i](wrapped)
	}

	return wrapped
}
