package experience

// gates.go implements the write gates described in spec §4.11: process-wide
// (here, per-Store) atomic flags that guard every add_* call. Grounded on
// arena-cache's shard hit/miss/eviction counters (pkg/cache.go), which use
// the same "plain atomic field, no locking" discipline for state that is
// read and written from multiple goroutines without a surrounding mutex.
//
// © 2025 sugarchess authors. MIT License.

import "sync/atomic"

// gates bundles the write-gate flags. All fields are atomic so they may be
// read or written from any goroutine, per spec §5's "Flags ... are atomic
// and may be read/written from any thread" rule.
type gates struct {
	enabled          atomic.Bool
	paused           atomic.Bool
	readonly         atomic.Bool
	benchMode        atomic.Bool
	benchSingleShot  atomic.Bool
}

func newGates() *gates {
	g := &gates{}
	g.enabled.Store(true)
	return g
}

// allowsWrite reports whether an add_* call should proceed at all, ignoring
// bench-mode single-shot consumption (handled separately since it mutates
// state on the PV path).
func (g *gates) allowsWrite() bool {
	return g.enabled.Load() && !g.paused.Load() && !g.readonly.Load()
}

// consumeBenchShot atomically claims the single bench-mode PV slot. Returns
// true at most once per bench run (i.e. once per call to EnterBenchMode),
// matching spec §4.5's "bench-mode: add_pv atomically consumes the
// single-shot token" rule.
func (g *gates) consumeBenchShot() bool {
	return g.benchSingleShot.CompareAndSwap(true, false)
}

// EnterBenchMode puts the store into reproducible single-shot benchmarking
// mode: one PV experience may be recorded for the whole run, and all
// MultiPV writes are dropped. Mirrors spec §4.11's "bench" transition.
func (s *Store) EnterBenchMode() {
	s.gates.benchMode.Store(true)
	s.gates.benchSingleShot.Store(true)
	s.reportGates()
}

// ExitBenchMode clears bench-mode at the end of a bench run.
func (s *Store) ExitBenchMode() {
	s.gates.benchMode.Store(false)
	s.gates.benchSingleShot.Store(false)
	s.reportGates()
}

// PauseLearning flips the paused gate on, rejecting further add_* calls
// until ResumeLearning.
func (s *Store) PauseLearning() {
	s.gates.paused.Store(true)
	s.reportGates()
}

// ResumeLearning flips the paused gate off.
func (s *Store) ResumeLearning() {
	s.gates.paused.Store(false)
	s.reportGates()
}

// SetEnabled toggles the engine-option-driven enabled gate.
func (s *Store) SetEnabled(on bool) {
	s.gates.enabled.Store(on)
	s.reportGates()
}

// SetReadonly toggles the engine-option-driven readonly gate.
func (s *Store) SetReadonly(on bool) {
	s.gates.readonly.Store(on)
	s.reportGates()
}

// UCINewGame implements spec §4.11's "ucinewgame" transition: save then
// resume learning.
func (s *Store) UCINewGame() error {
	if err := s.Save(false); err != nil {
		return err
	}
	s.ResumeLearning()
	return nil
}

// Quit implements spec §4.11's "quit" transition: save and release.
func (s *Store) Quit() error {
	if err := s.Save(false); err != nil {
		return err
	}
	return s.Unload()
}

func (s *Store) reportGates() {
	s.metrics.SetGate("enabled", s.gates.enabled.Load())
	s.metrics.SetGate("paused", s.gates.paused.Load())
	s.metrics.SetGate("readonly", s.gates.readonly.Load())
	s.metrics.SetGate("bench_mode", s.gates.benchMode.Load())
}
