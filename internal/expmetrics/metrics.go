// Package expmetrics is a thin abstraction over Prometheus so the
// Experience Store can be used with or without metrics wired in. When the
// caller passes a *prometheus.Registry via experience.WithMetrics, labeled
// collectors are created and registered; otherwise a no-op sink is used and
// the hot path (Probe/Add) pays nothing for metric bookkeeping.
//
// Grounded on arena-cache's pkg/metrics.go, which makes the same
// noop-vs-Prometheus split for per-shard cache counters; the series here are
// renamed and reshaped for store lifecycle events (loads/saves/gates)
// instead of cache hits/misses.
//
// © 2025 sugarchess authors. MIT License.
package expmetrics

import "github.com/prometheus/client_golang/prometheus"

// Sink is the internal interface the store controller talks to. Not part of
// the public API.
type Sink interface {
	IncLoad()
	IncSave(kind string)
	SetEntries(n float64)
	IncDuplicates(n float64)
	SetFragmentation(ratio float64)
	SetStagingDepth(kind string, n float64)
	SetGate(gate string, on bool)
}

/* -------------------------------------------------------------------------
   No-op sink
   ------------------------------------------------------------------------- */

type noop struct{}

func (noop) IncLoad()                            {}
func (noop) IncSave(string)                       {}
func (noop) SetEntries(float64)                   {}
func (noop) IncDuplicates(float64)                {}
func (noop) SetFragmentation(float64)             {}
func (noop) SetStagingDepth(string, float64)      {}
func (noop) SetGate(string, bool)                 {}

/* -------------------------------------------------------------------------
   Prometheus sink
   ------------------------------------------------------------------------- */

type promSink struct {
	loads          prometheus.Counter
	saves          *prometheus.CounterVec
	entries        prometheus.Gauge
	duplicates     prometheus.Counter
	fragmentation  prometheus.Gauge
	stagingDepth   *prometheus.GaugeVec
	gates          *prometheus.GaugeVec
}

func newPromSink(reg *prometheus.Registry) *promSink {
	s := &promSink{
		loads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "experience",
			Name:      "loads_total",
			Help:      "Number of completed experience file loads.",
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "experience",
			Name:      "saves_total",
			Help:      "Number of save operations, by kind.",
		}, []string{"kind"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "experience",
			Name:      "entries",
			Help:      "Total entries currently held in the index.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "experience",
			Name:      "duplicates_total",
			Help:      "Number of (key, move) re-observations merged instead of inserted.",
		}),
		fragmentation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "experience",
			Name:      "fragmentation_ratio",
			Help:      "duplicates / total_moves observed during the most recent load into an empty index.",
		}),
		stagingDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "experience",
			Name:      "staging_depth",
			Help:      "Pending entries awaiting the next save, by staging kind.",
		}, []string{"kind"}),
		gates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "experience",
			Name:      "write_gate",
			Help:      "Current value (0/1) of each write gate.",
		}, []string{"gate"}),
	}
	reg.MustRegister(s.loads, s.saves, s.entries, s.duplicates, s.fragmentation, s.stagingDepth, s.gates)
	return s
}

func (s *promSink) IncLoad() { s.loads.Inc() }
func (s *promSink) IncSave(kind string) { s.saves.WithLabelValues(kind).Inc() }
func (s *promSink) SetEntries(n float64) { s.entries.Set(n) }
func (s *promSink) IncDuplicates(n float64) { s.duplicates.Add(n) }
func (s *promSink) SetFragmentation(ratio float64) { s.fragmentation.Set(ratio) }
func (s *promSink) SetStagingDepth(kind string, n float64) {
	s.stagingDepth.WithLabelValues(kind).Set(n)
}
func (s *promSink) SetGate(gate string, on bool) {
	v := 0.0
	if on {
		v = 1.0
	}
	s.gates.WithLabelValues(gate).Set(v)
}

/* -------------------------------------------------------------------------
   Factory
   ------------------------------------------------------------------------- */

// New returns a Prometheus-backed sink registered against reg, or a no-op
// sink if reg is nil.
func New(reg *prometheus.Registry) Sink {
	if reg == nil {
		return noop{}
	}
	return newPromSink(reg)
}
