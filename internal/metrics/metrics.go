// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Solve outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxweight_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maxweight_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "maxweight_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)

	// Solver metrics
	solvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxweight_solves_total",
			Help: "Total number of solver invocations",
		},
		[]string{"strategy", "outcome"},
	)

	solveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maxweight_solve_duration_seconds",
			Help:    "Solver wall time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"strategy"},
	)

	solveInputItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maxweight_solve_input_items",
			Help:    "Number of catalog items handed to a solver",
			Buckets: []float64{1, 2, 4, 8, 12, 16, 20, 24, 32, 64, 256, 1024, 8192},
		},
		[]string{"strategy"},
	)

	catalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "maxweight_catalog_items",
			Help: "Number of items in the currently loaded catalog",
		},
	)

	catalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maxweight_catalog_reloads_total",
			Help: "Catalog loads by result",
		},
		[]string{"outcome"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RateLimitRejected counts a request refused by the rate limiter.
func RateLimitRejected() {
	rateLimitRejects.Inc()
}

// ObserveSolve records one solver run.
func ObserveSolve(strategy string, inputItems int, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	solvesTotal.WithLabelValues(strategy, outcome).Inc()
	solveDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	solveInputItems.WithLabelValues(strategy).Observe(float64(inputItems))
}

// SetCatalogSize publishes the size of the active catalog.
func SetCatalogSize(n int) {
	catalogItems.Set(float64(n))
}

// CatalogReloaded counts a catalog load attempt.
func CatalogReloaded(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	catalogReloads.WithLabelValues(outcome).Inc()
}
