package bdispatch_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnv(t *testing.T) {
	for _, tc := range []struct {
		url  string
		path []string
		host []string
	}{
		{"http://example.com", []string{""}, []string{"com", "example"}},
		{"http://example.com/", []string{""}, []string{"com", "example"}},
		{"http://www.example.com./a/b%20c/", []string{"a", "b c", ""}, []string{"com", "example", "www"}},
		{"http://127.0.0.1:8080/a%2Fb", []string{"a/b"}, []string{"1", "0", "0", "127"}},
	} {
		t.Run(tc.url, func(t *testing.T) {
			u, err := url.Parse(tc.url)
			require.NoError(t, err)

			env := bdispatch.NewEnv(u, nil)
			assert.Equal(t, tc.path, env.Path)
			assert.Equal(t, tc.host, env.Host)
			assert.Zero(t, env.PathPointer)
			assert.Zero(t, env.HostPointer)
			assert.Zero(t, env.Steps)
		})
	}
}

func TestEnvRest(t *testing.T) {
	u, _ := url.Parse("http://example.com/a/b/c")
	env := bdispatch.NewEnv(u, nil)

	assert.Equal(t, []string{"a", "b", "c"}, env.Rest())

	env.PathPointer = 2
	assert.Equal(t, []string{"c"}, env.Rest())

	env.PathPointer = 3
	assert.Empty(t, env.Rest())
}

func TestEnvCodeHandler(t *testing.T) {
	u, _ := url.Parse("http://example.com/")
	env := bdispatch.NewEnv(u, map[bdispatch.Code]bdispatch.Target{
		bdispatch.CodeNotFound: nil,
		bdispatch.CodeGone:     bdispatch.Text("gone"),
	})

	_, ok := env.CodeHandler(bdispatch.CodeNotFound)
	assert.False(t, ok)

	h, ok := env.CodeHandler(bdispatch.CodeGone)
	assert.True(t, ok)
	assert.Equal(t, bdispatch.Text("gone"), h)
}

func TestNewContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/a?x=1&x=2&y=", nil)
	req.Header.Set("X-Foo", "bar")

	u := &url.URL{Scheme: "http", Host: req.Host, Path: req.URL.Path, RawQuery: req.URL.RawQuery}
	c := bdispatch.NewContext(httptest.NewRecorder(), req, u)

	assert.Equal(t, http.MethodPost, c.Method)
	assert.Equal(t, "bar", c.Header.Get("X-Foo"))
	assert.Equal(t, map[string]string{"x": "1", "y": ""}, c.Params)
	assert.Equal(t, bdispatch.Identity{Address: "192.0.2.1", Port: 1234}, c.Remote)
	assert.Equal(t, req.Context(), c.Context)
	assert.Same(t, req, c.Request)
}
