package bdapp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerTimeouts(t *testing.T) {
	t.Run("long request timeout caps the header timeout", func(t *testing.T) {
		rh, r, w, i := bdapp.TimeoutConfig{RequestTimeout: time.Minute}.ServerTimeouts()
		assert.Equal(t, 5*time.Second, rh)
		assert.Equal(t, time.Minute, r)
		assert.Equal(t, time.Minute, w)
		assert.Equal(t, time.Minute, i)
	})

	t.Run("short request timeout", func(t *testing.T) {
		rh, r, _, _ := bdapp.TimeoutConfig{RequestTimeout: 2 * time.Second}.ServerTimeouts()
		assert.Equal(t, 2*time.Second, rh)
		assert.Equal(t, 2*time.Second, r)
	})

	t.Run("zero disables", func(t *testing.T) {
		rh, r, w, i := bdapp.TimeoutConfig{}.ServerTimeouts()
		assert.Zero(t, rh+r+w+i)
	})
}

func TestWithRequestDeadline(t *testing.T) {
	var deadline time.Time
	var ok, sameAsRequest bool

	h := bdispatch.HandlerFunc(func(c *bdispatch.Context, _ *bdispatch.Env) error {
		deadline, ok = c.Deadline()
		reqDeadline, _ := c.Request.Context().Deadline()
		sameAsRequest = reqDeadline.Equal(deadline)
		return nil
	})

	t.Run("sets deadline", func(t *testing.T) {
		d := bdispatch.New(h, bdispatch.WithMiddleware(bdapp.WithRequestDeadline(time.Minute)))
		start := time.Now()
		d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, ok)
		assert.True(t, sameAsRequest)
		assert.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)
	})

	t.Run("zero timeout leaves context alone", func(t *testing.T) {
		d := bdispatch.New(h, bdispatch.WithMiddleware(bdapp.WithRequestDeadline(0)))
		d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, ok)
	})
}

func TestWithRequestDeadlineCodeHandler(t *testing.T) {
	d := bdispatch.New(bdispatch.HandlerFunc(func(*bdispatch.Context, *bdispatch.Env) error {
		return bdispatch.CodeNotFound
	}), bdispatch.WithMiddleware(bdapp.WithRequestDeadline(time.Minute)),
		bdispatch.WithCodeHandlers(map[bdispatch.Code]bdispatch.Target{
			bdispatch.CodeNotFound: bdispatch.HandlerFunc(func(c *bdispatch.Context, _ *bdispatch.Env) error {
				if err := c.Err(); err != nil {
					return err
				}

				c.Writer.WriteHeader(http.StatusNotFound)
				_, err := c.Writer.Write([]byte("nothing here"))

				return err
			}),
		}))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nothing here", rec.Body.String())
}
