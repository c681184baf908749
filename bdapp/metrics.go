package bdapp

import (
	"strconv"

	"github.com/advdv/bdispatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records dispatcher outcomes in Prometheus. It implements [bdispatch.Observer].
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	routingSteps    prometheus.Histogram
}

// NewMetrics registers the dispatcher metrics with the registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bdispatch",
			Name:      "requests_total",
			Help:      "Total number of dispatched requests by method and status code",
		}, []string{"method", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bdispatch",
			Name:      "request_duration_seconds",
			Help:      "Time spent routing and answering a request",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		routingSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bdispatch",
			Name:      "routing_steps",
			Help:      "Number of routers a request passed through",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
	}
}

// Observe implements [bdispatch.Observer].
func (m *Metrics) Observe(o bdispatch.Outcome) {
	m.requestsTotal.WithLabelValues(o.Method, strconv.Itoa(o.Status)).Inc()
	m.requestDuration.WithLabelValues(o.Method).Observe(o.Duration.Seconds())
	m.routingSteps.Observe(float64(o.Steps))
}

var _ bdispatch.Observer = (*Metrics)(nil)
