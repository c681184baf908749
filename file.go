package bdispatch

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// MimeLookup maps a file extension, including the dot, to a content type.
type MimeLookup func(ext string) string

// DefaultMime uses the system's mime table and falls back to application/octet-stream.
func DefaultMime(ext string) string {
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}

	return contentTypeBinary
}

// FileOptions configure how a file is served.
type FileOptions struct {
	// FS is where files are read from, the local disk when nil.
	FS FileSystem
	// Cache enables validators and conditional requests with "Cache-Control: no-cache".
	Cache bool
	// MaxAge enables caching like Cache but with "Cache-Control: max-age=<seconds>".
	MaxAge time.Duration
	// DisableRange ignores Range headers and omits Accept-Ranges.
	DisableRange bool
	// DisableHead sends the body for HEAD requests as well.
	DisableHead bool
	// ChunkSize is the size of the pieces the body is streamed in, DefaultChunkSize when zero.
	ChunkSize int
	// StatusCode replaces the 200 or 206 status. Anything but 200 disables ranges.
	StatusCode int
	// Headers are added to the response and win over the computed ones. An "ETag" in here replaces the
	// computed entity tag.
	Headers http.Header
	// Mime looks up the content type, DefaultMime when nil.
	Mime MimeLookup
}

func (o FileOptions) caching() bool {
	return o.Cache || o.MaxAge > 0
}

func (o FileOptions) rangeDisabled() bool {
	return o.DisableRange || (o.StatusCode != 0 && o.StatusCode != http.StatusOK)
}

func (o FileOptions) fileSystem() FileSystem {
	if o.FS == nil {
		return OSFS{}
	}

	return o.FS
}

// FileHandler serves a single file with support for conditional and range requests.
type FileHandler struct {
	File    string
	Options FileOptions
}

// NewFileHandler creates a handler that serves file.
func NewFileHandler(file string, opts FileOptions) *FileHandler {
	return &FileHandler{File: file, Options: opts}
}

// Handle implements [Handler].
func (h *FileHandler) Handle(c *Context, _ *Env) error {
	return serveFile(c, h.File, h.Options)
}

func (*FileHandler) isTarget() {}

// entityTag is derived from size and modification time.
func entityTag(fi FileInfo) string {
	return fmt.Sprintf(`"%d-%d"`, fi.Size, fi.ModTime.UnixMilli())
}

func serveFile(c *Context, name string, opts FileOptions) error {
	fsys := opts.fileSystem()

	fi, err := fsys.Stat(c, name)
	if err != nil {
		return NewError(CodeNotFound, errors.Wrapf(err, "stat %q", name))
	}

	if !fi.IsFile {
		return NewError(CodeNotFound, errors.Newf("%q is not a file", name))
	}

	etag := opts.Headers.Get("ETag")
	if etag == "" {
		etag = entityTag(fi)
	}

	modTime := fi.ModTime.UTC().Truncate(time.Second)
	lastModified := modTime.Format(http.TimeFormat)

	if opts.caching() && notModified(c.Header, etag, modTime) {
		h := c.Writer.Header()
		h.Set("Last-Modified", lastModified)
		h.Set("ETag", etag)
		mergeHeaders(h, opts.Headers)
		c.Writer.WriteHeader(http.StatusNotModified)

		return nil
	}

	start, end, partial := int64(0), fi.Size-1, false
	if !opts.rangeDisabled() && (c.Method == http.MethodGet || c.Method == http.MethodHead) {
		br, ok := parseRange(c.Header.Get("Range"))
		if ok && ifRange(c.Header.Get("If-Range"), etag, modTime) {
			if start, end, err = br.resolve(fi.Size); err != nil {
				return err
			}

			partial = true
		}
	}

	status := http.StatusOK
	if partial {
		status = http.StatusPartialContent
	}

	if opts.StatusCode != 0 {
		status = opts.StatusCode
	}

	lookup := opts.Mime
	if lookup == nil {
		lookup = DefaultMime
	}

	h := c.Writer.Header()
	h.Set("Content-Type", lookup(path.Ext(name)))
	h.Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	h.Set("Last-Modified", lastModified)

	if opts.caching() {
		h.Set("ETag", etag)
		h.Set("Cache-Control", cacheControl(opts))
	}

	if !opts.rangeDisabled() {
		h.Set("Accept-Ranges", "bytes")
	}

	if partial {
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fi.Size))
	}

	mergeHeaders(h, opts.Headers)

	if (c.Method == http.MethodHead && !opts.DisableHead) || end < start {
		c.Writer.WriteHeader(status)
		return nil
	}

	body, err := fsys.Open(c, name, start, end)
	if err != nil {
		return errors.Wrapf(err, "open %q", name)
	}

	defer body.Close()

	c.Writer.WriteHeader(status)

	return copyBody(c, body, opts.ChunkSize)
}

func cacheControl(opts FileOptions) string {
	if opts.MaxAge > 0 {
		return "max-age=" + strconv.FormatInt(int64(opts.MaxAge/time.Second), 10)
	}

	return "no-cache"
}

// notModified evaluates If-None-Match and If-Modified-Since. Times have second precision.
func notModified(reqh http.Header, etag string, modTime time.Time) bool {
	if inm := reqh.Get("If-None-Match"); inm != "" && inm == etag {
		return true
	}

	if ims := reqh.Get("If-Modified-Since"); ims != "" {
		t, err := http.ParseTime(ims)
		if err == nil && !t.Before(modTime) {
			return true
		}
	}

	return false
}
