package bdispatch

import (
	"net/http"
	"net/url"
	"strings"
)

// Mount lifts a standard library [http.Handler] into a Target. The mounted handler receives the request
// with its path set to the segments that routing has not consumed, so a handler mounted under
// "/api/" sees "/api/users" as "/users". Whatever the handler writes is the response; it cannot fail.
func Mount(handler http.Handler) Target {
	return HandlerFunc(func(c *Context, env *Env) error {
		handler.ServeHTTP(c.Writer, stripConsumed(c.Request, env.Rest()))
		return nil
	})
}

func stripConsumed(r *http.Request, rest []string) *http.Request {
	p := "/" + strings.Join(rest, "/")

	escaped := make([]string, len(rest))
	for i, seg := range rest {
		escaped[i] = url.PathEscape(seg)
	}

	rp := "/" + strings.Join(escaped, "/")
	if rp == p {
		rp = ""
	}

	r2 := new(http.Request)
	*r2 = *r
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = p
	r2.URL.RawPath = rp

	return r2
}
