package bdispatch

import (
	"strings"
)

// Entry is one line of a route table.
type Entry struct {
	Key    string
	Target Target
}

// Table is an ordered route table. Later entries with the same key override earlier ones.
type Table []Entry

// wildcardKey sets the value that is used when nothing else in the table matches.
const wildcardKey = "*"

// PathRouter routes on the url path segments. Keys look like "GET /users/%:id" or "@/about": an
// optional "@" anchors the key to the end of the path, an optional method restricts it, "%:name"
// segments capture into [Context.Params].
//
// An unanchored key matches its path and everything below it, the deepest such match wins. The path
// segments below the match are left for the next router.
type PathRouter struct {
	end  Target
	trie trie
}

// NewPathRouter compiles the table. End is returned when nothing matches; nil means 404. Malformed keys
// are dropped.
func NewPathRouter(end Target, table Table) *PathRouter {
	r := &PathRouter{end: endOrNotFound(end)}
	compile(&r.trie, table, parsePathKey, true)

	return r
}

// Route implements [Router].
func (r *PathRouter) Route(env *Env, c *Context) (Target, error) {
	if env.PathPointer >= len(env.Path) {
		return r.end, nil
	}

	if t := r.trie.match(env.Path, &env.PathPointer, c.Method, c.Params); t != nil {
		return t, nil
	}

	return r.end, nil
}

func (*PathRouter) isTarget() {}

// HostRouter routes on the host labels, top level domain first. Keys look like ".com.example" or
// "@.com.example.%:tenant". Methods play no role in host routing.
type HostRouter struct {
	end  Target
	trie trie
}

// NewHostRouter compiles the table. End is returned when nothing matches; nil means 404. Malformed keys
// are dropped.
func NewHostRouter(end Target, table Table) *HostRouter {
	r := &HostRouter{end: endOrNotFound(end)}
	compile(&r.trie, table, parseHostKey, false)

	return r
}

// Route implements [Router].
func (r *HostRouter) Route(env *Env, c *Context) (Target, error) {
	if env.HostPointer >= len(env.Host) {
		return r.end, nil
	}

	if t := r.trie.match(env.Host, &env.HostPointer, anyMethod, c.Params); t != nil {
		return t, nil
	}

	return r.end, nil
}

func (*HostRouter) isTarget() {}

type keyParser func(key string) (segs []string, anchored bool, method string, err error)

func compile(t *trie, table Table, parse keyParser, decode bool) {
	for _, e := range table {
		if strings.TrimSpace(e.Key) == wildcardKey {
			t.wildcard = e.Target
			continue
		}

		segs, anchored, method, err := parse(e.Key)
		if err != nil {
			continue
		}

		_ = t.insert(segs, anchored, method, e.Target, decode)
	}
}

func parsePathKey(key string) ([]string, bool, string, error) {
	key, anchored := cutAnchor(key)

	idx := strings.IndexByte(key, '/')
	if idx < 0 {
		return nil, false, "", errNoDelimiter
	}

	method := strings.ToUpper(strings.TrimSpace(key[:idx]))
	if method == "" {
		method = anyMethod
	}

	return strings.Split(key[idx+1:], "/"), anchored, method, nil
}

func parseHostKey(key string) ([]string, bool, string, error) {
	key, anchored := cutAnchor(key)

	idx := strings.IndexByte(key, '.')
	if idx < 0 {
		return nil, false, "", errNoDelimiter
	}

	return strings.Split(key[idx+1:], "."), anchored, anyMethod, nil
}

func cutAnchor(key string) (string, bool) {
	key = strings.TrimSpace(key)
	rest, anchored := strings.CutPrefix(key, "@")

	return rest, anchored
}

func endOrNotFound(end Target) Target {
	if end == nil {
		return CodeNotFound
	}

	return end
}

// MethodRouter picks the next target by request method. The "*" entry serves all other methods; without
// it they get a 405.
type MethodRouter struct {
	Methods map[string]Target
}

// NewMethodRouter builds a method router, method names are upper-cased.
func NewMethodRouter(methods map[string]Target) *MethodRouter {
	m := make(map[string]Target, len(methods))
	for k, v := range methods {
		m[strings.ToUpper(k)] = v
	}

	return &MethodRouter{Methods: m}
}

// Route implements [Router].
func (r *MethodRouter) Route(_ *Env, c *Context) (Target, error) {
	if t, ok := r.Methods[c.Method]; ok {
		return t, nil
	}

	if t, ok := r.Methods[anyMethod]; ok {
		return t, nil
	}

	return CodeMethodNotAllowed, nil
}

func (*MethodRouter) isTarget() {}

// PathArgRouter captures the current path segment as a parameter and continues with Next.
type PathArgRouter struct {
	Name string
	Next Target
}

// Route implements [Router].
func (r *PathArgRouter) Route(env *Env, c *Context) (Target, error) {
	if env.PathPointer >= len(env.Path) {
		return CodeNotFound, nil
	}

	c.Params[r.Name] = env.Path[env.PathPointer]
	env.PathPointer++

	return r.Next, nil
}

func (*PathArgRouter) isTarget() {}

// HostArgRouter captures the current host label as a parameter and continues with Next.
type HostArgRouter struct {
	Name string
	Next Target
}

// Route implements [Router].
func (r *HostArgRouter) Route(env *Env, c *Context) (Target, error) {
	if env.HostPointer >= len(env.Host) {
		return CodeNotFound, nil
	}

	c.Params[r.Name] = env.Host[env.HostPointer]
	env.HostPointer++

	return r.Next, nil
}

func (*HostArgRouter) isTarget() {}

// SetCodeRouter installs status code handlers for the rest of the request and continues with Next. The
// handlers are laid over the ones already in effect.
type SetCodeRouter struct {
	Handlers map[Code]Target
	Next     Target
}

// Route implements [Router].
func (r *SetCodeRouter) Route(env *Env, _ *Context) (Target, error) {
	env.SetCodeHandlers(r.Handlers)
	return r.Next, nil
}

func (*SetCodeRouter) isTarget() {}
