// Package observability holds the Prometheus collectors of the service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aba_tracker"

var (
	// httpRequests counts handled requests. Labels: method, route, status.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	sessionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "recorded_total",
		Help:      "Completed therapy sessions by recording mode (atomic, stepwise)",
	}, []string{"mode"})

	// goalOutcomes counts per-goal trial outcomes. Labels: outcome (correct, incorrect).
	goalOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "goal_outcomes_total",
		Help:      "Recorded goal outcomes",
	}, []string{"outcome"})

	eventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Domain events that could not be published",
	})
)

// Recording modes for ObserveSession.
const (
	ModeAtomic   = "atomic"
	ModeStepwise = "stepwise"
)

// ObserveRequest records one handled HTTP request. route is the matched
// pattern, or "unmatched" for 404s, to keep label cardinality bounded.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSession records a completed session and its outcomes.
func ObserveSession(mode string, outcomes []bool) {
	sessionsRecorded.WithLabelValues(mode).Inc()
	for _, ok := range outcomes {
		if ok {
			goalOutcomes.WithLabelValues("correct").Inc()
		} else {
			goalOutcomes.WithLabelValues("incorrect").Inc()
		}
	}
}

// ObservePublishFailure counts an event that was not delivered.
func ObservePublishFailure() {
	eventPublishFailures.Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
