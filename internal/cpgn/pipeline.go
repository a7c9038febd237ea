package cpgn

// pipeline.go wires the CPGN line scanner and per-game importer into a
// concurrent parse / single-writer pipeline, per spec §4.8: many goroutines
// resolve and classify games in parallel; one goroutine owns the output
// file and the progress tally, so writes stay ordered with respect to each
// other without a mutex around the writer itself.
//
// Grounded on golang.org/x/sync/errgroup for first-error propagation and
// coordinated shutdown across the fan-out/fan-in goroutines — the same
// module (golang.org/x/sync) arena-cache already depends on for
// singleflight, just the sibling primitive suited to a worker pool instead
// of request de-duplication.

import (
	"bufio"
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sugarchess/experience/pkg/engineiface"
	"github.com/sugarchess/experience/pkg/experience"
)

// DedupLedger lets the pipeline skip games it has already imported in a
// previous run. SeenAndMark must be safe for concurrent use; it atomically
// checks and records hash in one call.
type DedupLedger interface {
	SeenAndMark(hash uint64) (alreadySeen bool, err error)
}

// HashLine returns a stable 64-bit hash of a raw input line, used as the
// dedup ledger's key.
func HashLine(line string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.TrimSpace(line)))
	return h.Sum64()
}

// Options configures an import run.
type Options struct {
	Limits     Limits
	Workers    int // 0 means GOMAXPROCS
	Ledger     DedupLedger
	OnProgress func(Progress)
}

// Progress reports cumulative import statistics, updated after every line
// finishes: lines consumed, games processed/errored/ignored, the W/B/D tally
// of accepted games, and moves staged. It does not report the percentage of
// input consumed, move totals by score bucket, or the output file size.
type Progress struct {
	LinesConsumed  int
	GamesProcessed int
	GamesErrored   int
	GamesIgnored   int
	Wins           int // declared-White accepted games
	Losses         int // declared-Black accepted games
	Draws          int // declared-Draw accepted games
	MovesStaged    int
}

// outcome is one parsed line's result, passed from a parser goroutine to
// the single writer goroutine.
type outcome struct {
	result     GameResult
	err        error
	skippedDup bool
}

// ImportReader reads one game per line from r, resolves and classifies each
// concurrently, and writes accepted games' staged moves to w. It returns
// once r is exhausted and every in-flight game has been written.
func ImportReader(ctx context.Context, oracle engineiface.MoveOracle, r io.Reader, w *experience.Writer, opts Options) (Progress, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan string, workers*4)
	outcomes := make(chan outcome, workers*4)

	g, gctx := errgroup.WithContext(ctx)
	var parseWG sync.WaitGroup
	parseWG.Add(1 + workers)

	g.Go(func() error {
		defer parseWG.Done()
		defer close(jobs)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			select {
			case jobs <- line:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return scanner.Err()
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer parseWG.Done()
			for line := range jobs {
				oc := parseOne(oracle, line, opts)
				select {
				case outcomes <- oc:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		parseWG.Wait()
		close(outcomes)
		return nil
	})

	var prog Progress
	g.Go(func() error {
		final, err := drainOutcomes(outcomes, w, opts)
		prog = final
		return err
	})

	err := g.Wait()
	return prog, err
}

func parseOne(oracle engineiface.MoveOracle, line string, opts Options) outcome {
	raw, err := ScanLine(line)
	if err != nil {
		return outcome{err: err}
	}
	if opts.Ledger != nil {
		seen, err := opts.Ledger.SeenAndMark(HashLine(line))
		if err != nil {
			return outcome{err: err}
		}
		if seen {
			return outcome{skippedDup: true}
		}
	}
	result, err := ImportGame(oracle, raw, opts.Limits)
	return outcome{result: result, err: err}
}

// drainOutcomes is the pipeline's single writer: it owns w exclusively and
// is the only goroutine that mutates Progress, so neither needs locking.
func drainOutcomes(outcomes <-chan outcome, w *experience.Writer, opts Options) (Progress, error) {
	var prog Progress
	for oc := range outcomes {
		prog.LinesConsumed++
		switch {
		case oc.err != nil:
			prog.GamesErrored++
		case oc.skippedDup:
			prog.GamesIgnored++
		case !oc.result.Accepted:
			prog.GamesIgnored++
		default:
			prog.GamesProcessed++
			switch oc.result.Declared {
			case ResultWhite:
				prog.Wins++
			case ResultBlack:
				prog.Losses++
			case ResultDraw:
				prog.Draws++
			}
			for _, m := range oc.result.Staged {
				if err := w.WriteEntry(experience.Entry{
					Key: m.Key, Move: m.Move, Value: m.Value, Depth: m.Depth, Count: 1,
				}); err != nil {
					return prog, fmt.Errorf("cpgn: writing staged entry: %w", err)
				}
				prog.MovesStaged++
			}
		}
		if opts.OnProgress != nil {
			opts.OnProgress(prog)
		}
	}
	return prog, w.Flush()
}
