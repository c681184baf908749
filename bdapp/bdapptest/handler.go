package bdapptest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
	"go.uber.org/zap/zaptest"
)

// CallHandler dispatches the request straight to the handler and returns the recorded response.
// The handler can use [bdapp.Log], its output goes to the test log. Failures of the handler are
// answered the way the dispatcher always answers them.
func CallHandler(t testing.TB, handler bdispatch.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	d := bdispatch.New(bdispatch.Handle(handler),
		bdispatch.WithLogger(bdapp.NewDispatchLogger(zaptest.NewLogger(t))),
		bdispatch.WithMiddleware(bdapp.RequestLogger(zaptest.NewLogger(t))))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	return rec
}
