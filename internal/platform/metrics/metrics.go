package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the gateway.
type Metrics struct {
	registry               *prometheus.Registry
	requestsTotal          prometheus.Counter
	telemetryMessagesTotal prometheus.Counter
	telemetryRejectedTotal prometheus.Counter
	framesRelayedTotal     prometheus.Counter
	activeRelaySessions    prometheus.Gauge
	errorsTotal            prometheus.Counter
}

// New creates and registers Prometheus metrics for the gateway.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total number of HTTP requests received",
	})
	telemetryMessagesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_telemetry_messages_total",
		Help: "Total number of telemetry messages successfully decoded",
	})
	telemetryRejectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_telemetry_rejected_total",
		Help: "Total number of telemetry messages rejected by the decoder",
	})
	framesRelayedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_frames_relayed_total",
		Help: "Total number of video frames pushed to live viewers",
	})
	activeRelaySessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_active_relay_sessions",
		Help: "Number of live relay sessions currently open",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		telemetryMessagesTotal,
		telemetryRejectedTotal,
		framesRelayedTotal,
		activeRelaySessions,
		errorsTotal,
	)

	return &Metrics{
		registry:               registry,
		requestsTotal:          requestsTotal,
		telemetryMessagesTotal: telemetryMessagesTotal,
		telemetryRejectedTotal: telemetryRejectedTotal,
		framesRelayedTotal:     framesRelayedTotal,
		activeRelaySessions:    activeRelaySessions,
		errorsTotal:            errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncTelemetryMessages increments the decoded telemetry message counter.
func (m *Metrics) IncTelemetryMessages() {
	m.telemetryMessagesTotal.Inc()
}

// IncTelemetryRejected increments the rejected telemetry message counter.
func (m *Metrics) IncTelemetryRejected() {
	m.telemetryRejectedTotal.Inc()
}

// AddFramesRelayed adds n to the relayed frame counter.
func (m *Metrics) AddFramesRelayed(n int) {
	m.framesRelayedTotal.Add(float64(n))
}

// RelaySessionStarted increments the active relay session gauge.
func (m *Metrics) RelaySessionStarted() {
	m.activeRelaySessions.Inc()
}

// RelaySessionEnded decrements the active relay session gauge.
func (m *Metrics) RelaySessionEnded() {
	m.activeRelaySessions.Dec()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
