package bdapp

import (
	"context"
	"net/http"

	"github.com/advdv/bdispatch"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
// Example:
//
//	type Handlers struct {
//	    rt *bdapp.Runtime[Env]
//	}
//
//	func NewHandlers(rt *bdapp.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
//
//	func (h *Handlers) GetItem(c *bdispatch.Context, env *bdispatch.Env) error {
//	    url, _ := h.rt.Reverse("get-item", c.Param("id"))
//	    // ...
//	}
type Runtime[E Environment] struct {
	env          E
	reverser     *bdispatch.Reverser
	secretReader SecretReader
	transport    http.RoundTripper
}

// RuntimeParams holds optional dependencies for Runtime.
type RuntimeParams struct {
	Reverser     *bdispatch.Reverser
	SecretReader SecretReader
	Transport    http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, params RuntimeParams) *Runtime[E] {
	return &Runtime[E]{
		env:          env,
		reverser:     params.Reverser,
		secretReader: params.SecretReader,
		transport:    params.Transport,
	}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Reverser returns the app's reverser, route tables use it to name their keys.
func (r *Runtime[E]) Reverser() *bdispatch.Reverser {
	return r.reverser
}

// Reverse returns the URL for a named key with the given values.
func (r *Runtime[E]) Reverse(name string, vals ...string) (string, error) {
	if r.reverser == nil {
		return "", errors.New("bdapp: reverser not configured")
	}
	return r.reverser.Reverse(name, vals...)
}

// FileOptions returns file serving options with the configured chunk size.
func (r *Runtime[E]) FileOptions() bdispatch.FileOptions {
	return bdispatch.FileOptions{ChunkSize: r.env.chunkSize()}
}

// Secret retrieves a secret value from AWS Secrets Manager.
//
// If jsonPath is provided, the secret is parsed as JSON and the path is extracted
// using gjson syntax (e.g., "database.password", "api.keys.0").
// If jsonPath is omitted, the raw secret string is returned.
func (r *Runtime[E]) Secret(ctx context.Context, secretID string, jsonPath ...string) (string, error) {
	if r.secretReader == nil {
		return "", errors.New("bdapp: secret reader not configured")
	}
	return secretFromReader(ctx, r.secretReader, secretID, jsonPath...)
}

// NewRequest returns a request builder for calling other services. Requests made with it are
// traced as children of the calling request when its context is passed to Fetch:
//
//	err := h.rt.NewRequest().BaseURL(upstream).Path("/items").ToJSON(&items).Fetch(c)
func (r *Runtime[E]) NewRequest() *requests.Builder {
	t := r.transport
	if t == nil {
		t = http.DefaultTransport
	}
	return newRequestBuilder(t)
}

// Guard returns a router that lets only requests carrying the secret as bearer token through to next.
func (r *Runtime[E]) Guard(secretID, jsonPath string, next bdispatch.Target) bdispatch.Target {
	return (&SecretGuard{Reader: r.secretReader, SecretID: secretID, JSONPath: jsonPath, Next: next}).Target()
}
