// Package metrics exposes agent counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reel_monitor"

// Metrics holds the agent's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	RaddecsReceived prometheus.Counter
	RaddecsWritten  prometheus.Counter
	StatsWritten    prometheus.Counter
	Rotations       prometheus.Counter
	Errors          *prometheus.CounterVec
	UptimeMs        prometheus.Gauge
	DroppedEvents   *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RaddecsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raddecs_received_total",
			Help:      "Raddecs handed to the dispatcher",
		}),
		RaddecsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raddecs_written_total",
			Help:      "Raddec lines passed to the logfile",
		}),
		StatsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_written_total",
			Help:      "Receiver statistics lines passed to the logfile",
		}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logfile_rotations_total",
			Help:      "Logfile sets opened",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by kind",
		}, []string{"kind"}),
		UptimeMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_uptime_milliseconds",
			Help:      "Latest uptime from the Eddystone-TLM beacon",
		}),
		DroppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Listener events dropped on a full queue",
		}, []string{"listener"}),
	}
	m.registry.MustRegister(
		m.RaddecsReceived, m.RaddecsWritten, m.StatsWritten,
		m.Rotations, m.Errors, m.UptimeMs, m.DroppedEvents,
	)
	return m
}

// Registry returns the registry holding the agent collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
