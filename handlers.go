package bdispatch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DataHandler answers with a fixed body: a [Text], a [Binary] or a [Stream]. A stream can only be read
// once, so a DataHandler holding one serves a single request.
type DataHandler struct {
	Data       Target
	StatusCode int
	Headers    http.Header
}

// NewText creates a handler answering with a plain text body.
func NewText(body string) *DataHandler {
	return &DataHandler{Data: Text(body)}
}

// NewBinary creates a handler answering with an application/octet-stream body.
func NewBinary(body []byte) *DataHandler {
	return &DataHandler{Data: Binary(body)}
}

// NewStream creates a handler answering with whatever r produces.
func NewStream(r io.Reader) *DataHandler {
	return &DataHandler{Data: Stream(r)}
}

// Handle implements [Handler].
func (h *DataHandler) Handle(c *Context, _ *Env) error {
	status := statusOr(h.StatusCode, http.StatusOK)

	switch d := h.Data.(type) {
	case Text:
		return writeWithHeaders(c.Writer, status, contentTypeText, []byte(d), h.Headers)
	case Binary:
		return writeWithHeaders(c.Writer, status, contentTypeBinary, d, h.Headers)
	case streamTarget:
		if rc, ok := d.r.(io.Closer); ok {
			defer rc.Close()
		}

		hdr := c.Writer.Header()
		hdr.Set("Content-Type", contentTypeBinary)
		hdr.Del("Content-Length")
		mergeHeaders(hdr, h.Headers)
		c.Writer.WriteHeader(status)

		return copyBody(c, d.r, DefaultChunkSize)
	default:
		return errors.Wrapf(ErrInvalidHandler, "data of type %T", h.Data)
	}
}

func (*DataHandler) isTarget() {}

// JSONHandler answers with the JSON encoding of Value.
type JSONHandler struct {
	Value      any
	StatusCode int
	Headers    http.Header
}

// NewJSON creates a handler answering with the JSON encoding of v.
func NewJSON(v any) *JSONHandler {
	return &JSONHandler{Value: v}
}

// Handle implements [Handler].
func (h *JSONHandler) Handle(c *Context, _ *Env) error {
	data, err := json.Marshal(h.Value)
	if err != nil {
		return errors.Wrap(err, "encode json")
	}

	return writeWithHeaders(c.Writer, statusOr(h.StatusCode, http.StatusOK),
		"application/json; charset=utf-8", data, h.Headers)
}

func (*JSONHandler) isTarget() {}

// RedirectHandler answers with a redirect, 307 unless StatusCode says otherwise. With Base set the
// location is Base followed by the path segments routing has not consumed, so a whole subtree can be
// moved elsewhere.
type RedirectHandler struct {
	Location   string
	Base       string
	StatusCode int
	Headers    http.Header
}

// NewRedirect creates a handler redirecting to location.
func NewRedirect(location string) *RedirectHandler {
	return &RedirectHandler{Location: location}
}

// Handle implements [Handler].
func (h *RedirectHandler) Handle(c *Context, env *Env) error {
	loc := h.Location
	if h.Base != "" {
		rest := env.Rest()
		escaped := make([]string, len(rest))
		for i, seg := range rest {
			escaped[i] = url.PathEscape(seg)
		}

		loc = strings.TrimSuffix(h.Base, "/") + "/" + strings.Join(escaped, "/")
	}

	hdr := c.Writer.Header()
	hdr.Set("Location", loc)
	mergeHeaders(hdr, h.Headers)
	c.Writer.WriteHeader(statusOr(h.StatusCode, http.StatusTemporaryRedirect))

	return nil
}

func (*RedirectHandler) isTarget() {}

func writeWithHeaders(w http.ResponseWriter, status int, contentType string, body []byte, extra http.Header) error {
	hdr := w.Header()
	hdr.Set("Content-Type", contentType)
	hdr.Set("Content-Length", strconv.Itoa(len(body)))
	mergeHeaders(hdr, extra)
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil && !IsPrematureClose(err) {
		return errors.Wrap(err, "write body")
	}

	return nil
}

// mergeHeaders copies extra into dst, extra wins.
func mergeHeaders(dst, extra http.Header) {
	for k, vs := range extra {
		dst[k] = vs
	}
}

func statusOr(status, def int) int {
	if status == 0 {
		return def
	}

	return status
}
