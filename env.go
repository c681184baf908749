package bdispatch

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Env is the per-request routing cursor. Routers read the segment at the pointer and advance it; the
// pointers are only ever moved forward during a walk, except when a trie rewinds to its last terminal.
type Env struct {
	// Path holds the percent-decoded path segments, "/a/b" becomes ["a", "b"].
	Path        []string
	PathPointer int

	// Host holds the host labels most significant first, "www.example.com" becomes
	// ["com", "example", "www"].
	Host        []string
	HostPointer int

	// Steps counts the routers visited so far.
	Steps int

	codeHandlers map[Code]Target
}

// NewEnv builds the routing cursor for a request url. The code handlers are the configured defaults;
// they are never modified.
func NewEnv(u *url.URL, codeHandlers map[Code]Target) *Env {
	return &Env{
		Path:         splitPath(u.EscapedPath()),
		Host:         splitHost(u.Hostname()),
		codeHandlers: codeHandlers,
	}
}

// Rest returns the path segments that have not been consumed by routing.
func (e *Env) Rest() []string {
	if e.PathPointer >= len(e.Path) {
		return nil
	}

	return e.Path[e.PathPointer:]
}

// CodeHandler returns the handler installed for the status code, if any.
func (e *Env) CodeHandler(code Code) (Target, bool) {
	t, ok := e.codeHandlers[code]
	return t, ok && t != nil
}

// SetCodeHandlers overlays status code handlers for the rest of this request. The previous map is
// copied, so the shared defaults stay untouched.
func (e *Env) SetCodeHandlers(handlers map[Code]Target) {
	e.codeHandlers = lo.Assign(e.codeHandlers, handlers)
}

func splitPath(escaped string) []string {
	if escaped == "" {
		escaped = "/"
	}

	segs := strings.Split(escaped, "/")[1:]
	for i, seg := range segs {
		if dec, err := url.PathUnescape(seg); err == nil {
			segs[i] = dec
		}
	}

	return segs
}

func splitHost(hostname string) []string {
	labels := lo.Filter(strings.Split(hostname, "."), func(l string, _ int) bool { return l != "" })
	return lo.Reverse(labels)
}

// Identity describes the remote end of the connection.
type Identity struct {
	Address string
	Port    int
}

// Context holds the facts about a request. It embeds the request's context.Context so it can be passed
// to anything that takes one.
type Context struct {
	context.Context

	Method  string
	Header  http.Header
	URL     *url.URL
	Remote  Identity
	Params  map[string]string
	Writer  http.ResponseWriter
	Body    io.ReadCloser
	Request *http.Request
}

// NewContext builds the request facts. Params starts out with the first value of every query parameter.
func NewContext(w http.ResponseWriter, r *http.Request, u *url.URL) *Context {
	params := make(map[string]string)
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	return &Context{
		Context: r.Context(),
		Method:  r.Method,
		Header:  r.Header,
		URL:     u,
		Remote:  parseIdentity(r.RemoteAddr),
		Params:  params,
		Writer:  w,
		Body:    r.Body,
		Request: r,
	}
}

// Param returns a captured or query parameter.
func (c *Context) Param(name string) string {
	return c.Params[name]
}

func parseIdentity(addr string) Identity {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Identity{Address: addr}
	}

	p, _ := strconv.Atoi(port)
	return Identity{Address: host, Port: p}
}
