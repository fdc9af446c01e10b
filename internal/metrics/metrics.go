// Package metrics exposes the A3 Prometheus instruments described in
// SPEC_FULL.md §4.10. Grounded on internal/core/metrics.go's atomic
// counter/gauge shape from the teacher repo and on the Prometheus usage
// pattern in cloudbridge-research-quic-test/server/server.go
// (startPrometheusExporter) and zulfikawr-warp, both of which expose
// runtime counters over promhttp rather than hand-rolled snapshots once
// the dependency is available.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles every instrument motmot records during normal operation.
type Set struct {
	Registry *prometheus.Registry

	ConnectionsTotal          *prometheus.CounterVec
	RequestsTotal             *prometheus.CounterVec
	RequestDurationSeconds    *prometheus.HistogramVec
	WebTransportSessionsActive *prometheus.GaugeVec
	DatagramsEchoedTotal      *prometheus.CounterVec
}

// New registers every instrument against a fresh registry.
func New() *Set {
	reg := prometheus.NewRegistry()

	s := &Set{
		Registry: reg,
		ConnectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "motmot_connections_total",
			Help: "Total QUIC connections accepted.",
		}, []string{"server"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "motmot_requests_total",
			Help: "Total HTTP/3 requests completed.",
		}, []string{"server", "method", "status"}),
		RequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "motmot_request_duration_seconds",
			Help:    "Request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"server", "route"}),
		WebTransportSessionsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "motmot_webtransport_sessions_active",
			Help: "Currently open WebTransport sessions.",
		}, []string{"server"}),
		DatagramsEchoedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "motmot_webtransport_datagrams_echoed_total",
			Help: "Total WebTransport datagrams echoed back to the peer.",
		}, []string{"server"}),
	}

	reg.MustRegister(
		s.ConnectionsTotal,
		s.RequestsTotal,
		s.RequestDurationSeconds,
		s.WebTransportSessionsActive,
		s.DatagramsEchoedTotal,
	)
	return s
}

// Handler returns the promhttp handler for this set's registry, to be
// served on the metrics listener at MetricsConfig.Addr.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}
