package observability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "revision_service"

// Metrics wraps the prometheus collectors the service reports. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestSeconds  *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	saveDecisions   *prometheus.CounterVec
	droppedRevs     *prometheus.CounterVec
	tableCacheTotal *prometheus.CounterVec
}

// NewMetrics registers the service collectors on a fresh registry.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	return &Metrics{
		registry: reg,
		requestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"route", "method", "status"}),
		requestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errorsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of error responses by domain error code.",
		}, []string{"route", "method", "code"}),
		saveDecisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "save",
			Name:      "decisions_total",
			Help:      "Save decisions by entity type and action.",
		}, []string{"entity", "action"}),
		droppedRevs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "dropped_revisions_total",
			Help:      "Revisions left out of a timeline by reason.",
		}, []string{"reason"}),
		tableCacheTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "table_cache_total",
			Help:      "Audit table cache lookups by result.",
		}, []string{"table", "result"}),
	}, nil
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestSeconds.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(route, method, code).Inc()
}

// RecordSaveDecision counts a save decision by entity type and action.
func (m *Metrics) RecordSaveDecision(entity, action string) {
	if m == nil {
		return
	}
	m.saveDecisions.WithLabelValues(entity, action).Inc()
}

// RecordDroppedRevision counts a revision left out of a timeline.
func (m *Metrics) RecordDroppedRevision(reason string) {
	if m == nil {
		return
	}
	m.droppedRevs.WithLabelValues(reason).Inc()
}

// RecordTableCache counts a cache lookup; hit is false for misses.
func (m *Metrics) RecordTableCache(table string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.tableCacheTotal.WithLabelValues(table, result).Inc()
}
