package bdispatch_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/stretchr/testify/require"
)

func apiHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "path:%s,escaped:%s,query:%s", r.URL.Path, r.URL.EscapedPath(), r.URL.RawQuery)
	})
}

func mountDispatcher() *bdispatch.Dispatcher {
	return bdispatch.New(bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "/api", Target: bdispatch.Mount(apiHandler())},
	}))
}

func TestMountSubPath(t *testing.T) {
	rec := serve(mountDispatcher(), http.MethodGet, "/api/users?x=1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/users,escaped:/users,query:x=1", rec.Body.String())
}

func TestMountExactPrefix(t *testing.T) {
	rec := serve(mountDispatcher(), http.MethodGet, "/api")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/,escaped:/,query:", rec.Body.String())
}

func TestMountTrailingSlash(t *testing.T) {
	rec := serve(mountDispatcher(), http.MethodGet, "/api/")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/,escaped:/,query:", rec.Body.String())
}

func TestMountDeeplyNested(t *testing.T) {
	rec := serve(mountDispatcher(), http.MethodGet, "/api/v1/users/123")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/v1/users/123,escaped:/v1/users/123,query:", rec.Body.String())
}

func TestMountEscapedSegments(t *testing.T) {
	rec := serve(mountDispatcher(), http.MethodGet, "/api/a%2Fb/c")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "path:/a/b/c,escaped:/a%2Fb/c,query:", rec.Body.String())
}

func TestMountStatusOwnership(t *testing.T) {
	d := bdispatch.New(bdispatch.Mount(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "custom error", http.StatusTeapot)
	})))

	rec := serve(d, http.MethodGet, "/teapot")

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "custom error\n", rec.Body.String())
}
