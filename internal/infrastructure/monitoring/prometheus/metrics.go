package prometheus

import (
	"time"
)

// Resolutions are pure computation; reloads touch the rule store.
var (
	DefaultResolveDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05}
	DefaultReloadDurationBuckets  = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10}
)

// EngineMetrics is the deadline engine's metric set. It satisfies the
// engine's metrics sink; the snapshot gauges are fed by whoever publishes
// rule snapshots.
type EngineMetrics struct {
	ResolutionsTotal   CounterVec
	ResolutionDuration HistogramVec
	ReloadsTotal       CounterVec
	ReloadDuration     HistogramVec
	RulesLoaded        GaugeVec
	SnapshotRevision   GaugeVec
}

// NewEngineMetrics registers the engine metric set on the collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	return &EngineMetrics{
		ResolutionsTotal: collector.RegisterCounter("deadline_resolutions_total",
			"Deadline resolutions by jurisdiction and outcome", "jurisdiction", "outcome"),
		ResolutionDuration: collector.RegisterHistogram("deadline_resolution_duration_seconds",
			"Deadline resolution duration", DefaultResolveDurationBuckets, "jurisdiction"),
		ReloadsTotal: collector.RegisterCounter("rule_reloads_total",
			"Rule snapshot reloads by result", "result"),
		ReloadDuration: collector.RegisterHistogram("rule_reload_duration_seconds",
			"Rule snapshot reload duration", DefaultReloadDurationBuckets, "result"),
		RulesLoaded: collector.RegisterGauge("rules_loaded",
			"Rules in the published snapshot by origin", "origin"),
		SnapshotRevision: collector.RegisterGauge("rule_snapshot_revision",
			"Generation counter of the published rule snapshot"),
	}
}

// ObserveResolve records one deadline resolution.
func (m *EngineMetrics) ObserveResolve(jurisdiction, outcome string, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(jurisdiction, outcome).Inc()
	m.ResolutionDuration.WithLabelValues(jurisdiction).Observe(elapsed.Seconds())
}

// ObserveReload records one snapshot reload attempt.
func (m *EngineMetrics) ObserveReload(result string, elapsed time.Duration) {
	m.ReloadsTotal.WithLabelValues(result).Inc()
	m.ReloadDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// SetSnapshot updates the snapshot gauges after a publish.
func (m *EngineMetrics) SetSnapshot(revision int64, fromStore, fromStatic int) {
	m.SnapshotRevision.WithLabelValues().Set(float64(revision))
	m.RulesLoaded.WithLabelValues("store").Set(float64(fromStore))
	m.RulesLoaded.WithLabelValues("static").Set(float64(fromStatic))
}
