// Package metrics exposes miniresp's Prometheus instrumentation: connection
// counts and per-command throughput/latency, registered once at startup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "miniresp"

// Metrics holds every counter/gauge/histogram miniresp registers, plus the
// private Registry they're registered against. All fields are safe for
// concurrent use (they're backed by Prometheus's own atomics), unlike the
// Engine's store — these are observed from both the router goroutine and
// every connection goroutine.
type Metrics struct {
	Registry *prometheus.Registry

	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	CommandsTotal     *prometheus.CounterVec
	CommandLatency    *prometheus.HistogramVec
}

// New builds a fresh Metrics set registered against its own private
// Registry rather than Prometheus's package-level default, so callers are
// free to build more than one (as the test suite does, one Metrics per
// test server) without a duplicate-registration panic.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of commands evaluated, by command name.",
		}, []string{"command"}),
		CommandLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "Time to evaluate one command, by command name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

// ObserveCommand increments the per-command counter. Call from the router's
// single goroutine right after Engine.Apply returns.
func (m *Metrics) ObserveCommand(name string) {
	m.CommandsTotal.WithLabelValues(name).Inc()
}

// ConnectionOpened/ConnectionClosed track the live connection gauge from
// the server's per-connection goroutines.
func (m *Metrics) ConnectionOpened() {
	m.ConnectionsTotal.Inc()
	m.ConnectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.ConnectionsActive.Dec()
}
