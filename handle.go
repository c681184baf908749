package bdispatch

// Router decides what answers a request, one step at a time. It inspects and advances the routing
// cursor in env and returns the next Target. A router must not write to the response.
type Router interface {
	Route(env *Env, c *Context) (Target, error)
}

// Handler produces the response. Returning an error that carries a [Code] answers the request with that
// status; any other error is logged and answered with a 500.
type Handler interface {
	Handle(c *Context, env *Env) error
}

// HandlerFunc allow casting a function to implement [Handler].
type HandlerFunc func(c *Context, env *Env) error

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(c *Context, env *Env) error {
	return f(c, env)
}

func (HandlerFunc) isTarget() {}

// FunctionRouter allows casting a function to implement [Router]. It is the place for custom routing
// logic, including steps that perform I/O.
type FunctionRouter func(env *Env, c *Context) (Target, error)

// Route implements the [Router] interface.
func (f FunctionRouter) Route(env *Env, c *Context) (Target, error) {
	return f(env, c)
}

func (FunctionRouter) isTarget() {}
