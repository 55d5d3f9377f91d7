// Package telemetry provides Prometheus metrics for the driver client:
// RPC traffic, the live object registry, and session broker activity.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts completed RPC requests by method and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwdrive_requests_total",
			Help: "Total number of RPC requests sent to the engine, by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// RequestDuration tracks RPC round-trip latency by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pwdrive_request_duration_seconds",
			Help:    "RPC round-trip duration in seconds, by method",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
		[]string{"method"},
	)

	// PendingRequests shows the number of in-flight RPCs awaiting a response.
	PendingRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pwdrive_pending_requests",
			Help: "Number of RPC requests awaiting a response",
		},
	)

	// RegistrySize shows the number of live remote objects tracked by a connection.
	RegistrySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pwdrive_registry_objects",
			Help: "Number of remote objects currently registered",
		},
	)

	// BrokerLaunches counts session broker acquisitions by mode and outcome.
	BrokerLaunches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwdrive_broker_acquisitions_total",
			Help: "Total session broker acquisitions, by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	// BrokerReuses counts successful launch-server descriptor reuses.
	BrokerReuses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pwdrive_broker_reuses_total",
			Help: "Total successful reconnects to a reusable launch-server descriptor",
		},
	)

	// AssertionRetries counts polling attempts made by auto-retrying assertions.
	AssertionRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwdrive_assertion_retries_total",
			Help: "Total polling attempts made by auto-retrying assertions, by matcher",
		},
		[]string{"matcher"},
	)

	// BuildInfo exposes build version as a label.
	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pwdrive_build_info",
			Help: "Build information",
		},
		[]string{"version", "go_version"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		PendingRequests,
		RegistrySize,
		BrokerLaunches,
		BrokerReuses,
		AssertionRetries,
		BuildInfo,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// RecordRequest records one completed RPC's outcome and latency.
func RecordRequest(method, outcome string, seconds float64) {
	RequestsTotal.WithLabelValues(method, outcome).Inc()
	RequestDuration.WithLabelValues(method).Observe(seconds)
}

// RecordBrokerAcquisition records one Broker.Acquire call's mode and outcome.
func RecordBrokerAcquisition(mode, outcome string) {
	BrokerLaunches.WithLabelValues(mode, outcome).Inc()
}

// RecordAssertionRetry records one polling attempt by an auto-retrying
// assertion matcher.
func RecordAssertionRetry(matcher string) {
	AssertionRetries.WithLabelValues(matcher).Inc()
}
