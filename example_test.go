package bdispatch_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/advdv/bdispatch"
	"github.com/cockroachdb/errors"
)

func Example() {
	items := map[string]string{"42": "Example Item"}
	rev := bdispatch.NewReverser()

	root := bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "@GET /", Target: bdispatch.Text("home")},
		rev.Entry("get-item", "@GET /items/%:id", bdispatch.HandlerFunc(func(c *bdispatch.Context, env *bdispatch.Env) error {
			name, ok := items[c.Param("id")]
			if !ok {
				return bdispatch.NewError(bdispatch.CodeNotFound, errors.Newf("no item %q", c.Param("id")))
			}

			return bdispatch.NewJSON(map[string]string{"id": c.Param("id"), "name": name}).Handle(c, env)
		})),
	})

	d := bdispatch.New(root)

	// Generate URL by key name
	url, _ := rev.Reverse("get-item", "42")
	fmt.Println("URL:", url)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	fmt.Println("Status:", rec.Code)
	fmt.Println("Body:", rec.Body.String())

	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	fmt.Println("Missing:", rec.Code, rec.Body.String())
	// Output:
	// URL: /items/42
	// Status: 200
	// Body: {"id":"42","name":"Example Item"}
	// Missing: 404 404 Not Found
}

func ExampleNewError() {
	protected := bdispatch.HandlerFunc(func(c *bdispatch.Context, _ *bdispatch.Env) error {
		token := c.Header.Get("Authorization")
		if token == "" {
			return bdispatch.NewError(bdispatch.CodeUnauthorized, errors.New("missing token"))
		}
		if token != "Bearer secret" {
			return bdispatch.NewError(bdispatch.CodeForbidden, errors.New("invalid token"))
		}
		fmt.Fprint(c.Writer, "welcome")
		return nil
	})

	d := bdispatch.New(protected)

	// Request without token
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	d.ServeHTTP(rec, req)
	fmt.Println("No token:", rec.Code)

	// Request with invalid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	d.ServeHTTP(rec, req)
	fmt.Println("Bad token:", rec.Code)

	// Request with valid token
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret")
	d.ServeHTTP(rec, req)
	fmt.Println("Valid token:", rec.Code)
	// Output:
	// No token: 401
	// Bad token: 403
	// Valid token: 200
}

func ExampleDispatcher_Use() {
	d := bdispatch.New(bdispatch.Text("pong"))

	// Add request ID middleware
	d.Use(func(next bdispatch.HandlerFunc) bdispatch.HandlerFunc {
		return func(c *bdispatch.Context, env *bdispatch.Env) error {
			// Set header before calling next handler
			c.Writer.Header().Set("X-Request-ID", "req-123")
			return next(c, env)
		}
	})

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	fmt.Println("Body:", rec.Body.String())
	fmt.Println("Request ID:", rec.Header().Get("X-Request-ID"))
	// Output:
	// Body: pong
	// Request ID: req-123
}

func ExampleNewHostRouter() {
	tenant := bdispatch.HandlerFunc(func(c *bdispatch.Context, _ *bdispatch.Env) error {
		fmt.Fprintf(c.Writer, "tenant %s", c.Param("tenant"))
		return nil
	})

	d := bdispatch.New(bdispatch.NewHostRouter(nil, bdispatch.Table{
		{Key: "@.com.example", Target: bdispatch.Text("marketing site")},
		{Key: "@.com.example.%:tenant", Target: tenant},
	}))

	for _, host := range []string{"example.com", "acme.example.com", "example.org"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		d.ServeHTTP(rec, req)
		fmt.Println(host, rec.Code, rec.Body.String())
	}
	// Output:
	// example.com 200 marketing site
	// acme.example.com 200 tenant acme
	// example.org 404 404 Not Found
}

func ExampleSetCodeRouter() {
	api := bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "GET /ping", Target: bdispatch.Text("pong")},
	})

	d := bdispatch.New(bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "/api", Target: &bdispatch.SetCodeRouter{
			Handlers: map[bdispatch.Code]bdispatch.Target{
				bdispatch.CodeNotFound: bdispatch.NewJSON(map[string]string{"error": "not found"}),
			},
			Next: api,
		}},
	}), bdispatch.WithCodeHandlers(map[bdispatch.Code]bdispatch.Target{
		bdispatch.CodeNotFound: bdispatch.Text("page not found"),
	}))

	for _, target := range []string{"/api/ping", "/api/nope", "/nope"} {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		fmt.Println(target, rec.Body.String())
	}
	// Output:
	// /api/ping pong
	// /api/nope {"error":"not found"}
	// /nope page not found
}

func ExampleCodeOf() {
	// Create an error with a specific code
	err := bdispatch.NewError(bdispatch.CodeNotFound, errors.New("user not found"))
	fmt.Println("Code:", int(bdispatch.CodeOf(err)))

	// Wrapped errors preserve the code
	wrapped := fmt.Errorf("handler failed: %w", err)
	fmt.Println("Wrapped code:", int(bdispatch.CodeOf(wrapped)))

	// A code is an error by itself
	fmt.Println("Bare code:", int(bdispatch.CodeOf(bdispatch.CodeForbidden)))

	// Other errors return CodeUnknown
	plainErr := errors.New("something went wrong")
	fmt.Println("Plain error code:", int(bdispatch.CodeOf(plainErr)))
	// Output:
	// Code: 404
	// Wrapped code: 404
	// Bare code: 403
	// Plain error code: 0
}
