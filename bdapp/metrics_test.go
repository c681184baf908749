package bdapp_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserveDispatcher(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := bdapp.NewMetrics(reg)

	d := bdispatch.New(bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "@GET /ok", Target: bdispatch.Text("ok")},
	}), bdispatch.WithObserver(m))

	for _, target := range []string{"/ok", "/ok", "/missing"} {
		d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP bdispatch_requests_total Total number of dispatched requests by method and status code
# TYPE bdispatch_requests_total counter
bdispatch_requests_total{code="200",method="GET"} 2
bdispatch_requests_total{code="404",method="GET"} 1
`), "bdispatch_requests_total"))

	n, err := testutil.GatherAndCount(reg, "bdispatch_request_duration_seconds", "bdispatch_routing_steps")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetricsRoutingSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := bdapp.NewMetrics(reg)

	m.Observe(bdispatch.Outcome{Method: http.MethodPost, Status: http.StatusCreated, Steps: 3})

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "bdispatch_routing_steps" {
			continue
		}

		found = true
		h := mf.GetMetric()[0].GetHistogram()
		assert.EqualValues(t, 1, h.GetSampleCount())
		assert.InDelta(t, 3, h.GetSampleSum(), 0.001)
	}

	assert.True(t, found)
}
