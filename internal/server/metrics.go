package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/fibseq/internal/sequence"
)

const metricsNamespace = "fibseq"

// Metrics holds the prometheus collectors of one server. Each Metrics owns
// its registry, so several servers (or tests) can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	domainErrors    *prometheus.CounterVec
	statsOnce       sync.Once
}

// NewMetrics creates and registers the server collectors together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"route"}),
		domainErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "domain_errors_total",
			Help:      "Rejected sequence operations by operation and error kind.",
		}, []string{"operation", "kind"}),
	}

	m.registry.MustRegister(
		m.activeRequests,
		m.requestsTotal,
		m.requestDuration,
		m.domainErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// RegisterStats exposes engine size gauges read from stats on every scrape.
// Only the first call has an effect.
func (m *Metrics) RegisterStats(stats func() sequence.Stats) {
	m.statsOnce.Do(func() {
		m.registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "clients",
				Help:      "Number of known clients.",
			}, func() float64 { return float64(stats().Clients) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "cached_values",
				Help:      "Length of the shared sequence memoization table.",
			}, func() float64 { return float64(stats().CachedValues) }),
		)
	})
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordDomainError counts a rejected sequence operation.
func (m *Metrics) RecordDomainError(operation, kind string) {
	m.domainErrors.WithLabelValues(operation, kind).Inc()
}

// WritePrometheus serves the registry in the prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
