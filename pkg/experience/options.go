package experience

// options.go defines the functional-option configuration surface for
// NewStore, following arena-cache's pkg/config.go pattern: a private config
// struct filled with defaults, mutated only through exported Option values,
// so the Store's public API stays forward-compatible as new knobs are
// added.
//
// © 2025 sugarchess authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sugarchess/experience/internal/expmetrics"
	"github.com/sugarchess/experience/pkg/engineiface"
)

// Option configures a Store at construction time.
type Option func(*config)

type config struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	oracle   engineiface.MoveOracle

	// evalImportance holds the configured look-ahead weight, range [0, 10].
	// Show does not read it; Show takes its own evalImportance argument.
	evalImportance int
}

func defaultConfig() *config {
	return &config{
		logger:         zap.NewNop(),
		evalImportance: 0,
	}
}

// WithLogger plugs an external zap.Logger. The store never logs on the
// Probe/Add hot path; only lifecycle events (load/save summaries and
// recovered errors) are emitted, matching arena-cache's WithLogger contract
// in pkg/config.go. Gate changes are reported to metrics only, not logged.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection. Passing nil disables
// metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithMoveOracle records an engine move oracle on the Store. No Store method
// reads it: Show takes a ready Position argument, and the CPGN importer
// (cpgn.ImportReader) takes its oracle as a parameter.
func WithMoveOracle(o engineiface.MoveOracle) Option {
	return func(c *config) { c.oracle = o }
}

// WithEvalImportance records the UCI "Experience Book Eval Importance" knob,
// clamped to [0, 10]. Show does not read the stored value; its quality
// scoring uses the evalImportance argument passed to each Show call.
func WithEvalImportance(v int) Option {
	return func(c *config) {
		if v < 0 {
			v = 0
		}
		if v > 10 {
			v = 10
		}
		c.evalImportance = v
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) metricsSink() expmetrics.Sink {
	return expmetrics.New(c.registry)
}
