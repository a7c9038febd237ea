// Package bench provides reproducible micro-benchmarks for the Experience
// Store. Run via: go test ./bench -bench=. -benchmem -cpu 1,4,16
//
// The benchmarks intentionally use a single key/move shape so results are
// comparable across versions:
//   - Key   – uint64 position fingerprint (cheap hashing, fits in register)
//   - Move  – uint32 opaque move encoding
//
// We measure:
//  1. AddPVExperience – write-only workload (staging, no disk I/O)
//  2. Probe           – read-only workload (after warm-up)
//  3. ProbeParallel   – highly concurrent reads (b.RunParallel)
//  4. SaveIncremental – staged-batch flush to disk
//
// Results are printed in ns/op + alloc/op so CI can diff via benchstat.
//
// NOTE: Unit tests live alongside the packages they test; this file is only
// for performance.
//
// Grounded on arena-cache's bench/bench_test.go (global seeded dataset,
// b.ReportAllocs/b.ResetTimer discipline, RunParallel read benchmark),
// adapted from a generic Put/Get cache workload to the Experience Store's
// add/probe/save surface.
//
// © 2025 sugarchess authors. MIT License.
package bench

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/sugarchess/experience/pkg/experience"
)

const datasetSize = 1 << 16 // 65536 keys

// global dataset reused across benches to avoid reallocating large slices.
var ds = func() []uint64 {
	rnd := rand.New(rand.NewSource(42))
	arr := make([]uint64, datasetSize)
	for i := range arr {
		arr[i] = rnd.Uint64()
	}
	return arr
}()

func newBenchStore(b *testing.B) *experience.Store {
	b.Helper()
	s := experience.NewStore()
	path := filepath.Join(b.TempDir(), "bench.exp")
	if err := s.Init(path); err != nil {
		b.Fatalf("Init: %v", err)
	}
	return s
}

func BenchmarkAddPVExperience(b *testing.B) {
	s := newBenchStore(b)
	defer s.Unload()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := ds[i&(datasetSize-1)]
		s.AddPVExperience(key, uint32(i), int32(i%1000), int32(8+i%20))
	}
}

func BenchmarkProbe(b *testing.B) {
	s := newBenchStore(b)
	defer s.Unload()
	for i, k := range ds {
		s.AddPVExperience(k, uint32(i), int32(i%1000), int32(8+i%20))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := ds[i&(datasetSize-1)]
		s.Probe(k)
	}
}

func BenchmarkProbeParallel(b *testing.B) {
	s := newBenchStore(b)
	defer s.Unload()
	for i, k := range ds {
		s.AddPVExperience(k, uint32(i), int32(i%1000), int32(8+i%20))
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		idx := rand.Intn(datasetSize)
		for pb.Next() {
			idx = (idx + 1) & (datasetSize - 1)
			s.Probe(ds[idx])
		}
	})
}

func BenchmarkSaveIncremental(b *testing.B) {
	s := newBenchStore(b)
	defer s.Unload()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < 1000; j++ {
			k := ds[(i*1000+j)&(datasetSize-1)]
			s.AddPVExperience(k, uint32(j), int32(j%1000), int32(8+j%20))
		}
		b.StartTimer()
		if err := s.Save(false); err != nil {
			b.Fatalf("Save: %v", err)
		}
	}
}
