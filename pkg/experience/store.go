package experience

// store.go implements the Store controller: the load/save/probe/add
// lifecycle described in spec §4.5, including the single background loader
// task and the cooperative-cancellation / wait-for-load discipline from
// spec §5.
//
// Grounded on arena-cache's pkg/cache.go Cache[K,V] (sharded index +
// lifecycle methods) and pkg/loader.go's singleflight-based de-duplication,
// adapted from "dedupe concurrent loads of the same missing cache key" to
// "dedupe concurrent Init calls for the same experience file path".
//
// © 2025 sugarchess authors. MIT License.

import (
	"bufio"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sugarchess/experience/internal/chain"
	"github.com/sugarchess/experience/internal/entrypool"
	"github.com/sugarchess/experience/internal/expmetrics"
	"github.com/sugarchess/experience/pkg/engineiface"
)

const incrementalFlushBytes = 16 << 20 // spec §4.5: 16 MiB incremental flush buffer

// LoadSummary reports what happened during a Load, per spec §4.5 step 6.
type LoadSummary struct {
	Version              int
	NewMoves             int
	NewPositions         int
	Duplicates           int
	FragmentationPercent float64 // only meaningful when loading into an empty index
	Upgraded             bool
	Cancelled            bool
}

// SaveSummary reports what an incremental save wrote, per spec §4.5.
type SaveSummary struct {
	PVWritten      int
	MultiPVWritten int
}

// Store is the Experience Store controller: one file, one position index,
// one background loader, and the write gates that guard every mutation.
type Store struct {
	mu   sync.RWMutex
	path string
	idx  *index

	pools      []*entrypool.Pool[Entry]
	stagingPV  []*Entry
	stagingMul []*Entry
	oldEntries []*Entry

	gates   *gates
	logger  *zap.Logger
	metrics expmetrics.Sink
	oracle  engineiface.MoveOracle

	evalImportance int

	loadMu       sync.Mutex
	loadDone     chan struct{}
	abortLoading atomic.Bool
	lastLoad     LoadSummary
	lastLoadErr  error

	initGroup singleflight.Group
}

// NewStore constructs a Store. The store is empty (no file, no entries)
// until Init or Load is called.
func NewStore(opts ...Option) *Store {
	cfg := applyOptions(opts)
	return &Store{
		idx:            newIndex(),
		gates:          newGates(),
		logger:         cfg.logger,
		metrics:        cfg.metricsSink(),
		oracle:         cfg.oracle,
		evalImportance: cfg.evalImportance,
	}
}

// Path returns the file currently associated with the store, or "". It
// waits for any in-flight load first, since the load is what sets the path.
func (s *Store) Path() string {
	s.WaitForLoadingFinished()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Reassociate changes the file a full save targets without touching the
// index. Used by Merge, which loads several input files into one Store and
// then must direct the canonical full save at a distinct output path.
func (s *Store) Reassociate(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

/* -------------------------------------------------------------------------
   Load lifecycle (spec §4.5, §5)
   ------------------------------------------------------------------------- */

// WaitForLoadingFinished blocks until any in-flight load completes. Save,
// Load and Init all call this (directly or transitively) before touching
// shared state, per spec §5.
func (s *Store) WaitForLoadingFinished() {
	s.loadMu.Lock()
	ch := s.loadDone
	s.loadMu.Unlock()
	if ch != nil {
		<-ch
	}
}

// AbortLoading cooperatively cancels an in-flight load. The loader checks
// this at every entry and returns promptly, keeping whatever was already
// linked (spec §5, §7).
func (s *Store) AbortLoading() {
	s.abortLoading.Store(true)
}

// Init is idempotent: if the store is already successfully loaded for path,
// it returns immediately. Otherwise it unloads any current state and starts
// a new background load. Concurrent Init calls for the same path collapse
// into a single load via singleflight, matching arena-cache's loaderGroup
// dedup in pkg/loader.go.
func (s *Store) Init(path string) error {
	_, err, _ := s.initGroup.Do(path, func() (any, error) {
		s.mu.RLock()
		already := s.path == path && s.lastLoadErr == nil && s.path != ""
		s.mu.RUnlock()
		if already {
			return nil, nil
		}
		if s.path != "" {
			if err := s.Unload(); err != nil {
				return nil, err
			}
		}
		return nil, s.Load(path, false)
	})
	return err
}

// Load starts loading path into the store. If synchronous, Load blocks
// until the load finishes and returns its error; otherwise it returns nil
// immediately and the result can be read later via LastLoadSummary.
func (s *Store) Load(path string, synchronous bool) error {
	s.WaitForLoadingFinished()

	done := make(chan struct{})
	s.loadMu.Lock()
	s.loadDone = done
	s.loadMu.Unlock()
	s.abortLoading.Store(false)

	run := func() {
		summary, err := s.doLoad(path)
		s.mu.Lock()
		s.lastLoad = summary
		s.lastLoadErr = err
		s.mu.Unlock()

		s.loadMu.Lock()
		s.loadDone = nil
		s.loadMu.Unlock()
		close(done)
	}

	if synchronous {
		run()
		return s.lastLoadErr
	}
	go run()
	return nil
}

// LastLoadSummary returns the most recently completed load's summary and
// error.
func (s *Store) LastLoadSummary() (LoadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLoad, s.lastLoadErr
}

// doLoad performs the actual file read and linking. It runs either
// synchronously (Load(path, true)) or on the background loader goroutine.
func (s *Store) doLoad(path string) (LoadSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("experience: file does not exist, starting empty", zap.String("path", path))
			s.mu.Lock()
			s.path = path
			s.mu.Unlock()
			return LoadSummary{}, nil
		}
		s.logger.Error("experience: open failed", zap.String("path", path), zap.Error(err))
		return LoadSummary{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.logger.Error("experience: stat failed", zap.String("path", path), zap.Error(err))
		return LoadSummary{}, err
	}
	size := info.Size()
	if size == 0 {
		s.logger.Info("experience: file is empty", zap.String("path", path))
		s.mu.Lock()
		s.path = path
		s.mu.Unlock()
		return LoadSummary{}, nil
	}

	header := make([]byte, maxSignatureLen())
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		s.logger.Error("experience: header read failed", zap.String("path", path), zap.Error(err))
		return LoadSummary{}, err
	}
	codec, count, err := detectCodec(header[:n], size)
	if err != nil {
		s.logger.Warn("experience: format error", zap.String("path", path), zap.Error(err))
		return LoadSummary{}, err
	}
	if _, err := f.Seek(int64(len(codec.Signature())), io.SeekStart); err != nil {
		s.logger.Error("experience: seek failed", zap.String("path", path), zap.Error(err))
		return LoadSummary{}, err
	}

	pool := entrypool.New[Entry](int(count))
	reader := bufio.NewReaderSize(f, 1<<20)

	s.mu.RLock()
	wasEmpty := s.idx.len() == 0
	startPositions := s.idx.positions()
	s.mu.RUnlock()

	var newMoves, duplicates int
	cancelled := false
	for i := int64(0); i < count; i++ {
		if s.abortLoading.Load() {
			s.logger.Info("experience: load aborted, keeping partial results", zap.String("path", path))
			cancelled = true
			break
		}
		e, err := codec.ReadEntry(reader)
		if err != nil {
			s.logger.Warn("experience: short read, stopping early", zap.String("path", path), zap.Error(err))
			break
		}
		slot := pool.Alloc()
		*slot = e

		s.mu.Lock()
		res := s.idx.link(slot)
		s.mu.Unlock()

		if res == linkMerged {
			duplicates++
		} else {
			newMoves++
		}
	}

	s.mu.Lock()
	s.path = path
	s.pools = append(s.pools, pool)
	newPositions := s.idx.positions() - startPositions
	entryTotal := s.idx.len()
	s.mu.Unlock()

	summary := LoadSummary{
		Version:      codec.Version(),
		NewMoves:     newMoves,
		NewPositions: newPositions,
		Duplicates:   duplicates,
		Cancelled:    cancelled,
	}
	if wasEmpty && newMoves+duplicates > 0 {
		summary.FragmentationPercent = float64(duplicates) / float64(newMoves+duplicates) * 100
	}

	s.metrics.IncLoad()
	s.metrics.SetEntries(float64(entryTotal))
	s.metrics.IncDuplicates(float64(duplicates))
	if wasEmpty && newMoves+duplicates > 0 {
		s.metrics.SetFragmentation(summary.FragmentationPercent / 100)
	}
	s.logger.Info("experience: load complete",
		zap.String("path", path),
		zap.Int("new_moves", newMoves),
		zap.Int("new_positions", newPositions),
		zap.Int("duplicates", duplicates),
		zap.Float64("fragmentation_pct", summary.FragmentationPercent),
	)

	if codec.Version() < currentCodec.Version() && !cancelled {
		s.logger.Info("experience: upgrading legacy file", zap.String("path", path), zap.Int("from_version", codec.Version()))
		summary.Upgraded = true
		// ignoreLoadingCheck=true: we ARE the loader goroutine/call, and the
		// engine guarantees no concurrent writer during this window (spec §9).
		if err := s.saveInternal(true, true); err != nil {
			s.logger.Error("experience: upgrade rewrite failed", zap.String("path", path), zap.Error(err))
			return summary, err
		}
	}
	return summary, nil
}

/* -------------------------------------------------------------------------
   Unload
   ------------------------------------------------------------------------- */

// Unload saves pending staging, frees loaded pools, and clears the index.
// Per spec §4.5: "save, free pools, delete old entries bin, clear index."
func (s *Store) Unload() error {
	s.WaitForLoadingFinished()
	if err := s.saveInternal(false, true); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pools {
		p.Free()
	}
	s.pools = nil
	s.oldEntries = nil
	s.stagingPV = nil
	s.stagingMul = nil
	s.idx.reset()
	s.path = ""
	return nil
}

/* -------------------------------------------------------------------------
   Probe / best entry
   ------------------------------------------------------------------------- */

// Probe returns the head of key's move chain, or nil. Callers must have
// already let any in-flight load finish; Probe enforces this itself so
// callers never observe a partially-loaded index (spec §5).
func (s *Store) Probe(key engineiface.Key) *Entry {
	s.WaitForLoadingFinished()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.probe(key)
}

// FindBestEntry returns the highest pseudo-quality entry for key, or nil.
func (s *Store) FindBestEntry(key engineiface.Key) *Entry {
	s.WaitForLoadingFinished()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.bestEntry(key)
}

// Chain returns key's move chain as a slice, in pseudo-quality order.
func (s *Store) Chain(key engineiface.Key) []*Entry {
	s.WaitForLoadingFinished()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.chainSlice(key)
}

// Len returns the total number of entries currently indexed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.len()
}

// Positions returns the number of distinct position keys currently indexed,
// after any in-flight load has finished.
func (s *Store) Positions() int {
	s.WaitForLoadingFinished()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.positions()
}

/* -------------------------------------------------------------------------
   Add (write path, gated)
   ------------------------------------------------------------------------- */

// AddPVExperience records a principal-variation observation. Returns false
// if rejected by a write gate. Implements spec §4.5's add_pv_experience.
func (s *Store) AddPVExperience(key engineiface.Key, move engineiface.Move, value, depth int32) bool {
	if !s.gates.allowsWrite() {
		return false
	}
	if s.gates.benchMode.Load() && !s.gates.consumeBenchShot() {
		return false
	}

	e := &Entry{Key: key, Move: move, Value: value, Depth: depth, Count: 1}
	s.mu.Lock()
	s.stagingPV = append(s.stagingPV, e)
	s.idx.link(e)
	depthN := len(s.stagingPV)
	s.mu.Unlock()
	s.metrics.SetStagingDepth("pv", float64(depthN))
	return true
}

// AddMultiPVExperience records a multi-line search observation. Dropped
// outright while bench_mode is active, per spec §4.5/§4.11.
func (s *Store) AddMultiPVExperience(key engineiface.Key, move engineiface.Move, value, depth int32) bool {
	if !s.gates.allowsWrite() {
		return false
	}
	if s.gates.benchMode.Load() {
		return false
	}

	e := &Entry{Key: key, Move: move, Value: value, Depth: depth, Count: 1}
	s.mu.Lock()
	s.stagingMul = append(s.stagingMul, e)
	s.idx.link(e)
	depthN := len(s.stagingMul)
	s.mu.Unlock()
	s.metrics.SetStagingDepth("multipv", float64(depthN))
	return true
}

// Touch creates path with just the current signature, no entries, unless
// the file already exists or the store is disabled / path is empty. Per
// spec §4.5/§8 scenario 1.
func (s *Store) Touch(path string) error {
	if path == "" || !s.gates.enabled.Load() {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		s.logger.Error("experience: touch failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer f.Close()
	return writeSignature(f, currentCodec)
}

// Bench wraps a benchmark run per spec §4.11: enter bench/single-shot mode,
// touch path, run fn, then always clear bench mode.
func (s *Store) Bench(path string, fn func() error) error {
	s.EnterBenchMode()
	defer s.ExitBenchMode()
	if err := s.Touch(path); err != nil {
		return err
	}
	return fn()
}

/* -------------------------------------------------------------------------
   Save
   ------------------------------------------------------------------------- */

// Save drains staging to disk (saveAll=false) or canonicalizes the whole
// file from the index (saveAll=true), per spec §4.5.
func (s *Store) Save(saveAll bool) error {
	return s.saveInternal(saveAll, false)
}

func (s *Store) saveInternal(saveAll, ignoreLoadingCheck bool) error {
	if !ignoreLoadingCheck {
		s.WaitForLoadingFinished()
	}

	s.mu.RLock()
	path := s.path
	hasStaging := len(s.stagingPV) > 0 || len(s.stagingMul) > 0
	s.mu.RUnlock()

	if path == "" {
		return nil
	}
	if !saveAll && !hasStaging {
		return nil
	}

	var backedUp bool
	if saveAll {
		var err error
		backedUp, err = s.backupExisting(path)
		if err != nil {
			s.logger.Error("experience: backup failed", zap.String("path", path), zap.Error(err))
			return err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if saveAll {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		s.logger.Error("experience: open for save failed", zap.String("path", path), zap.Error(err))
		if backedUp {
			s.restoreBackup(path)
		}
		return err
	}

	writeErr := s.writeSaveBody(f, path, saveAll)
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		s.logger.Error("experience: save failed", zap.String("path", path), zap.Bool("save_all", saveAll), zap.Error(writeErr))
		if backedUp {
			s.restoreBackup(path)
		}
		return writeErr
	}

	kind := "incremental"
	if saveAll {
		kind = "full"
	}
	s.metrics.IncSave(kind)
	return nil
}

func (s *Store) writeSaveBody(f *os.File, path string, saveAll bool) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		if err := writeSignature(f, currentCodec); err != nil {
			return err
		}
	}

	if saveAll {
		written, err := s.saveAllLocked(f)
		if err != nil {
			return err
		}
		s.logger.Info("experience: full save complete", zap.String("path", path), zap.Int("entries_written", written))
		return nil
	}

	pvN, mulN, err := s.saveIncrementalLocked(f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.oldEntries = append(s.oldEntries, s.stagingPV...)
	s.oldEntries = append(s.oldEntries, s.stagingMul...)
	s.stagingPV = nil
	s.stagingMul = nil
	s.mu.Unlock()
	s.metrics.SetStagingDepth("pv", 0)
	s.metrics.SetStagingDepth("multipv", 0)
	s.logger.Info("experience: incremental save complete", zap.String("path", path), zap.Int("pv_written", pvN), zap.Int("multipv_written", mulN))
	return nil
}

type dedupKey struct {
	key  engineiface.Key
	move engineiface.Move
}

// saveIncrementalLocked writes the raw staged entries (PV then MultiPV),
// de-duplicating only within this batch, per spec §4.5. It does not consult
// the index's merged values: the on-disk file is an append log of
// individual observations, reconciled into canonical form only by a full
// save / defrag.
func (s *Store) saveIncrementalLocked(f io.Writer) (pvWritten, mulWritten int, err error) {
	s.mu.RLock()
	pvBatch := append([]*Entry(nil), s.stagingPV...)
	mulBatch := append([]*Entry(nil), s.stagingMul...)
	s.mu.RUnlock()

	bw := bufio.NewWriterSize(f, incrementalFlushBytes)
	seen := make(map[dedupKey]struct{}, len(pvBatch)+len(mulBatch))

	write := func(batch []*Entry) (int, error) {
		n := 0
		for _, e := range batch {
			if e.Depth < MinDepth {
				continue
			}
			k := dedupKey{e.Key, e.Move}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if err := currentCodec.WriteEntry(bw, *e); err != nil {
				return n, err
			}
			n++
		}
		return n, nil
	}

	pvWritten, err = write(pvBatch)
	if err != nil {
		return
	}
	mulWritten, err = write(mulBatch)
	if err != nil {
		return
	}
	err = bw.Flush()
	return
}

// saveAllLocked rewrites the entire file from the index: per chain, scale
// counts down to bound unbounded growth across repeated full saves, then
// write every entry meeting MinDepth, per spec §4.5.
func (s *Store) saveAllLocked(f io.Writer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bw := bufio.NewWriterSize(f, incrementalFlushBytes)
	written := 0
	var writeErr error

	s.idx.walkAll(func(head *Entry) {
		if writeErr != nil {
			return
		}
		var maxCount uint16
		chain.Walk(head, next, func(e *Entry) {
			if e.Count > maxCount {
				maxCount = e.Count
			}
		})
		scale := uint16(1 + maxCount/128)
		chain.Walk(head, next, func(e *Entry) {
			if writeErr != nil {
				return
			}
			e.Count = maxU16(e.Count/scale, 1)
			if e.Depth < MinDepth {
				return
			}
			if err := currentCodec.WriteEntry(bw, *e); err != nil {
				writeErr = err
				return
			}
			written++
		})
	})
	if writeErr != nil {
		return written, writeErr
	}
	return written, bw.Flush()
}

func maxU16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

func (s *Store) backupExisting(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	bak := path + ".bak"
	_ = os.Remove(bak)
	if err := os.Rename(path, bak); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) restoreBackup(path string) {
	bak := path + ".bak"
	if err := os.Rename(bak, path); err != nil {
		s.logger.Error("experience: backup restore failed", zap.String("path", path), zap.Error(err))
	}
}
