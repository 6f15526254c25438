// Package observability carries the uplink's request logging and metrics
// middleware.
package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voidnet",
			Subsystem: "uplink",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests served by the uplink.",
		},
		[]string{"satellite", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voidnet",
			Subsystem: "uplink",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"satellite", "method", "path", "status"},
	)
	deployments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voidnet",
			Subsystem: "uplink",
			Name:      "deployments_total",
			Help:      "Capsule deploy attempts by outcome.",
		},
		[]string{"satellite", "outcome"},
	)
	openMode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "voidnet",
			Subsystem: "uplink",
			Name:      "open_mode",
			Help:      "1 when the uplink accepts unauthenticated requests (no credential configured).",
		},
		[]string{"satellite"},
	)
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, deployments, openMode)
	})
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(satellite, method, path string, status int, duration time.Duration) {
	register()
	label := strconv.Itoa(status)
	httpRequests.WithLabelValues(satellite, method, path, label).Inc()
	httpDuration.WithLabelValues(satellite, method, path, label).Observe(duration.Seconds())
}

// RecordDeployment counts one deploy attempt. outcome is "success" or
// "failure".
func RecordDeployment(satellite string, success bool) {
	register()
	outcome := "failure"
	if success {
		outcome = "success"
	}
	deployments.WithLabelValues(satellite, outcome).Inc()
}

// SetOpenMode marks whether this satellite runs without a credential. A
// scrape showing open_mode=1 on a production satellite is a
// misconfiguration alarm, not noise.
func SetOpenMode(satellite string, open bool) {
	register()
	v := 0.0
	if open {
		v = 1.0
	}
	openMode.WithLabelValues(satellite).Set(v)
}

// MetricsHandler exposes the prometheus registry.
func MetricsHandler() http.Handler {
	register()
	return promhttp.Handler()
}
