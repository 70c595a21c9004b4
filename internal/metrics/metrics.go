// Prometheus collectors for the simulation engine and stream.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TickErrors counts simulation tick failures per loop.
	TickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusionops_tick_errors_total",
		Help: "Simulation tick failures, by loop.",
	}, []string{"loop"})

	// UpdatesTotal counts update-log appends per envelope type.
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusionops_updates_total",
		Help: "Update log appends, by update type.",
	}, []string{"type"})

	// EventsTotal counts generated events per severity.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusionops_events_total",
		Help: "Generated events, by severity.",
	}, []string{"severity"})

	// AlertsDeduped counts alerts suppressed by the dedup window.
	AlertsDeduped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fusionops_alerts_deduped_total",
		Help: "Alerts suppressed by fingerprint deduplication.",
	})

	// StreamClients tracks currently connected SSE clients.
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fusionops_stream_clients",
		Help: "Currently connected stream clients.",
	})
)
