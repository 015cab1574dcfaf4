// Package metrics exposes shelfd's Prometheus metrics.
//
// A Metrics value owns its own prometheus.Registry so tests can create
// isolated instances. It provides:
//
//   - shelfd_http_requests_total: counter by method, route and status
//   - shelfd_http_request_duration_seconds: histogram by method and route
//   - shelfd_store_operations_total: counter by collection and operation
//   - shelfd_store_errors_total: counter by collection and operation
//   - shelfd_collection_records: gauge by collection, read at scrape time
//
// Routes are the matched ServeMux pattern (e.g. "GET /api/books/{id}"), never
// the raw path, so label cardinality stays bounded. Unmatched requests are
// reported under the route "unmatched".
//
// Usage:
//
//	m := metrics.New()
//	handler := m.Middleware(mux)
//	mux.Handle("GET /metrics", m.Handler())
//
// Metrics also implements collection.Observer, so a store created with
// collection.WithObserver reports its operations here.
package metrics
