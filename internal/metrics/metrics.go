// Package metrics exposes Prometheus counters/gauges for the server,
// grounded on runZeroInc-sockstats's exporter wiring pattern
// (prometheus.MustRegister + promhttp.Handler on a side HTTP listener).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters/gauges this server exposes.
type Metrics struct {
	ConnectionsAccepted prometheus.Counter
	CommandsExecuted    prometheus.Counter
	ProtocolErrors      prometheus.Counter
	KeysExpired         prometheus.Counter
	LiveKeys            prometheus.Gauge
}

// New registers and returns a Metrics bundle on the default Prometheus
// registry, which is what Serve's promhttp.Handler exposes. Calling New a
// second time in one process panics on duplicate registration.
func New() *Metrics {
	m := &Metrics{
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redikv_connections_accepted_total",
			Help: "Total TCP connections accepted.",
		}),
		CommandsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redikv_commands_executed_total",
			Help: "Total commands successfully parsed and executed.",
		}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redikv_protocol_errors_total",
			Help: "Total connections dropped due to a codec protocol error.",
		}),
		KeysExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redikv_keys_expired_total",
			Help: "Total keys removed by the expiration agent.",
		}),
		LiveKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redikv_live_keys",
			Help: "Current number of live keys in the keyspace.",
		}),
	}
	prometheus.MustRegister(
		m.ConnectionsAccepted,
		m.CommandsExecuted,
		m.ProtocolErrors,
		m.KeysExpired,
		m.LiveKeys,
	)
	return m
}

// Serve starts the /metrics HTTP listener on addr. Intended to run in its
// own goroutine; returns the http.ListenAndServe error on exit.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
