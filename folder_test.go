package bdispatch_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folderFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	for name, data := range map[string]string{
		"a.txt":             "a",
		"sub/b.txt":         "b",
		".secret":           "secret",
		"sub/.hidden/c.txt": "c",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	}

	return root
}

func TestFolder(t *testing.T) {
	root := folderFixture(t)
	logs := bdispatch.NewTestLogger(t)
	d := bdispatch.New(bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "/files", Target: bdispatch.NewFolderHandler(root, bdispatch.FolderOptions{})},
		{Key: "/all", Target: bdispatch.NewFolderHandler(root, bdispatch.FolderOptions{AllowHidden: true})},
	}), bdispatch.WithLogger(logs))

	for _, tc := range []struct {
		target string
		status int
		body   string
	}{
		{"/files/a.txt", http.StatusOK, "a"},
		{"/files/sub/b.txt", http.StatusOK, "b"},
		{"/files/sub/./b.txt", http.StatusOK, "b"},
		{"/files/sub", http.StatusNotFound, ""},
		{"/files", http.StatusNotFound, ""},
		{"/files/missing.txt", http.StatusNotFound, ""},
		{"/files/.secret", http.StatusForbidden, ""},
		{"/files/sub/.hidden/c.txt", http.StatusForbidden, ""},
		{"/all/.secret", http.StatusOK, "secret"},
		{"/all/sub/.hidden/c.txt", http.StatusOK, "c"},
		{"/files/../outside-root.txt", http.StatusForbidden, ""},
		{"/files/sub/..%2F..%2Foutside-root.txt", http.StatusForbidden, ""},
		{"/files/%2Fetc%2Fpasswd", http.StatusForbidden, ""},
		{"/all/..", http.StatusForbidden, ""},
	} {
		t.Run(tc.target, func(t *testing.T) {
			rec := serve(d, http.MethodGet, tc.target)
			assert.Equal(t, tc.status, rec.Code)

			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}

	assert.Zero(t, logs.NumLogHandlerError)
}

func TestFolderFromFS(t *testing.T) {
	mfs := memfs.New()
	require.NoError(t, mfs.MkdirAll("site/css", 0o777))
	require.NoError(t, mfs.WriteFile("site/index.html", []byte("<h1>hi</h1>"), 0o644))
	require.NoError(t, mfs.WriteFile("site/css/app.css", []byte("body{}"), 0o644))

	d := bdispatch.New(bdispatch.NewFolderHandler("site", bdispatch.FolderOptions{
		FileOptions: bdispatch.FileOptions{FS: bdispatch.FromFS(mfs), Cache: true},
	}))

	rec := serve(d, http.MethodGet, "/css/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = serve(d, http.MethodGet, "/index.html", "Range", "bytes=1-2")
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "h1", rec.Body.String())

	rec = serve(d, http.MethodGet, "/nope.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
