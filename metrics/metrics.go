// Package metrics exports the loading pipeline's events to Prometheus. It
// implements types.Metrics, so components stay unaware of the registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jvb127/faultserve/types"
)

// Metrics holds all Prometheus metrics for the dataset server.
type Metrics struct {
	Loads         *prometheus.CounterVec
	LoadFailures  *prometheus.CounterVec
	LoadDuration  prometheus.Histogram
	WriteBacks    *prometheus.CounterVec
	Refreshes     prometheus.Counter
	EntityLookups *prometheus.CounterVec
}

// New creates and registers all metrics with the provided registry.
func New(reg prometheus.Registerer) *Metrics {
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faultserve_loads_total",
		Help: "Dataset loads served, by the tier that answered",
	}, []string{"provenance"})

	loadFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faultserve_load_failures_total",
		Help: "Dataset loads that produced no dataset, by failure kind",
	}, []string{"kind"})

	loadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "faultserve_load_duration_seconds",
		Help:    "End-to-end dataset load latency",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	writeBacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faultserve_writebacks_total",
		Help: "Shared-tier write-back attempts, by outcome",
	}, []string{"outcome"})

	refreshes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "faultserve_refreshes_total",
		Help: "Background max-residency refreshes triggered",
	})

	entityLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faultserve_entity_lookups_total",
		Help: "Entity store lookups, by result",
	}, []string{"result"})

	reg.MustRegister(loads, loadFailures, loadDuration, writeBacks, refreshes, entityLookups)

	return &Metrics{
		Loads:         loads,
		LoadFailures:  loadFailures,
		LoadDuration:  loadDuration,
		WriteBacks:    writeBacks,
		Refreshes:     refreshes,
		EntityLookups: entityLookups,
	}
}

// Load implements types.Metrics.
func (m *Metrics) Load(p types.Provenance) {
	m.Loads.WithLabelValues(string(p)).Inc()
}

// LoadFailure implements types.Metrics.
func (m *Metrics) LoadFailure(kind types.LoadErrorKind) {
	m.LoadFailures.WithLabelValues(string(kind)).Inc()
}

// WriteBack implements types.Metrics.
func (m *Metrics) WriteBack(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.WriteBacks.WithLabelValues(outcome).Inc()
}

// Refresh implements types.Metrics.
func (m *Metrics) Refresh() {
	m.Refreshes.Inc()
}

// EntityLookup implements types.Metrics.
func (m *Metrics) EntityLookup(found bool) {
	result := "found"
	if !found {
		result = "not_found"
	}
	m.EntityLookups.WithLabelValues(result).Inc()
}

// ObserveLoadDuration records one load's wall-clock latency.
func (m *Metrics) ObserveLoadDuration(d time.Duration) {
	m.LoadDuration.Observe(d.Seconds())
}
