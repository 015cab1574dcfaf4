package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmockd/shelfd/pkg/collection"
	"github.com/getmockd/shelfd/pkg/httputil"
)

const namespace = "shelfd"

// RouteUnmatched labels requests that matched no route.
const RouteUnmatched = "unmatched"

// Metrics holds the registry and collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
}

var _ collection.Observer = (*Metrics)(nil)

// New creates a registry with the HTTP and store collectors plus the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of collection operations.",
		}, []string{"collection", "operation"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Collection operations that returned an error, not-found included.",
		}, []string{"collection", "operation"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.storeOps,
		m.storeErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and duration for next.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := httputil.NewStatusWriter(w)

		next.ServeHTTP(sw, r)

		// ServeMux sets Pattern on the request it routed.
		route := r.Pattern
		if route == "" {
			route = RouteUnmatched
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Observe implements collection.Observer.
func (m *Metrics) Observe(coll, operation string, _ time.Duration, err error) {
	m.storeOps.WithLabelValues(coll, operation).Inc()
	if err != nil {
		m.storeErrors.WithLabelValues(coll, operation).Inc()
	}
}

// TrackCollection exports the size of a collection, read from count at scrape time.
func (m *Metrics) TrackCollection(coll string, count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "collection_records",
		Help:        "Number of records in each collection.",
		ConstLabels: prometheus.Labels{"collection": coll},
	}, func() float64 {
		return float64(count())
	}))
}
