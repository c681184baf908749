package bdispatch

import (
	"net/http"
)

// responseWriter wraps the transport's writer to remember whether, and with which status, the headers
// went out.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}

	return w.ResponseWriter.Write(b)
}

// Unwrap allows http.ResponseController to reach the transport's writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush implements http.Flusher if the underlying writer supports it.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HeadersSent reports whether the status line and headers of w have been written. Writers that did not
// come from a [Dispatcher] are assumed to be untouched.
func HeadersSent(w http.ResponseWriter) bool {
	for {
		switch tw := w.(type) {
		case *responseWriter:
			return tw.written
		case interface{ Unwrap() http.ResponseWriter }:
			w = tw.Unwrap()
		default:
			return false
		}
	}
}
