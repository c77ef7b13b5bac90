// Package metrics provides Prometheus metrics for the docs router.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sagarc03/docsgate"
)

// RouteOther labels requests that never reached the router, such as health
// checks.
const RouteOther = "other"

// Metrics holds the collectors registered for one server.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	storeGets   *prometheus.CounterVec
	bytesServed prometheus.Counter
}

// New creates the collectors and registers them with reg.
// It panics if any collector is already registered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsgate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		storeGets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsgate_store_gets_total",
				Help: "Total number of object store reads",
			},
			[]string{"backend", "result"},
		),
		bytesServed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docsgate_bytes_served_total",
				Help: "Total response body bytes written",
			},
		),
	}
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordStoreGet records the outcome of one ObjectStore.Get call.
func (m *Metrics) RecordStoreGet(backend string, err error) {
	result := "hit"
	switch {
	case err == nil:
	case errors.Is(err, docsgate.ErrNotFound):
		result = "miss"
	default:
		result = "error"
	}
	m.storeGets.WithLabelValues(backend, result).Inc()
}

type routeKey struct{}

type routeLabel struct {
	name string
}

// SetRoute labels the in-flight request with the routing rule that handled
// it. It is a no-op outside Middleware.
func SetRoute(ctx context.Context, route string) {
	if l, ok := ctx.Value(routeKey{}).(*routeLabel); ok {
		l.name = route
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests that never call SetRoute are labeled RouteOther.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		label := &routeLabel{name: RouteOther}
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), routeKey{}, label)))

		m.RecordHTTPRequest(label.name, rw.statusCode, time.Since(start))
		m.bytesServed.Add(float64(rw.written))
	})
}

type instrumentedStore struct {
	store   docsgate.ObjectStore
	backend string
	metrics *Metrics
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (docsgate.Object, error) {
	obj, err := s.store.Get(ctx, key)
	s.metrics.RecordStoreGet(s.backend, err)
	return obj, err
}

// InstrumentStore wraps store so every Get is counted under backend.
func (m *Metrics) InstrumentStore(store docsgate.ObjectStore, backend string) docsgate.ObjectStore {
	return &instrumentedStore{store: store, backend: backend, metrics: m}
}
