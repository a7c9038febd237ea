// Command expctl operates directly on .exp experience files: defrag, merge,
// show, and import_cpgn, the same surface spec.md §6 describes as UCI
// commands, exposed here as a standalone tool for offline maintenance.
//
// Grounded on arena-cache's cmd/arena-cache-inspect (flag-set-per-subcommand
// parsing, a fatal() helper, JSON/text dual output) adapted from polling a
// running process's debug endpoint to operating on local files directly,
// since the Experience Store has no running-server counterpart to poll.
//
// © 2025 sugarchess authors. MIT License.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sugarchess/experience/internal/cpgn"
	"github.com/sugarchess/experience/internal/fakeengine"
	"github.com/sugarchess/experience/internal/importledger"
	"github.com/sugarchess/experience/pkg/experience"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Println(version)
		return
	case "defrag":
		err = runDefrag(os.Args[2:])
	case "merge":
		err = runMerge(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "import_cpgn":
		err = runImportCPGN(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `expctl <command> [args]

commands:
  defrag <path>
  merge <output> <input1> <input2> [...]
  show [--eval-importance N] [--json] <path> <fen>
  import_cpgn [--ledger dir] [--workers N] [--json] <path> <cpgn-file>
  version`)
}

func runDefrag(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("defrag requires exactly one path argument")
	}
	result, err := experience.Defrag(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("entries: %d -> %d\n", result.EntriesBefore, result.EntriesAfter)
	return nil
}

func runMerge(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("merge requires an output path and at least two input paths")
	}
	result, err := experience.Merge(args[0], args[1:])
	if err != nil {
		return err
	}
	fmt.Printf("merged %d files: %d positions, %d entries\n", result.InputsMerged, result.Positions, result.EntriesTotal)
	return nil
}

func runShow(args []string) error {
	flagSet, opts := newShowFlags()
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) != 2 {
		return fmt.Errorf("show requires a path and a FEN argument")
	}
	path, fen := rest[0], rest[1]

	s := experience.NewStore()
	if err := s.Init(path); err != nil {
		return err
	}
	defer s.Unload()

	// This tool has no real chess engine to resolve FEN strings or legal
	// moves with; fakeengine stands in so show can exercise the store's
	// look-ahead quality ranking end to end. A real deployment wires expctl
	// (or the UCI engine it's embedded alongside) to an actual MoveOracle.
	pos, err := fakeengine.Oracle{}.ParseFEN(fen)
	if err != nil {
		return err
	}
	rows, err := s.Show(pos, opts.evalImportance)
	if err != nil {
		return err
	}
	if opts.json {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}
	for _, r := range rows {
		fmt.Printf("move=%-10d value=%-6s depth=%-3d count=%-4d quality=%8.2f draw=%v\n",
			r.Move, experience.FormatValue(r.Value), r.Depth, r.Count, r.Quality, r.MayDraw)
	}
	return nil
}

func runImportCPGN(args []string) error {
	flagSet, opts := newImportFlags()
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) != 2 {
		return fmt.Errorf("import_cpgn requires an experience path and a cpgn file argument")
	}
	expPath, cpgnPath := rest[0], rest[1]

	w, err := experience.OpenWriter(expPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", expPath, err)
	}
	defer w.Close()

	in, err := os.Open(cpgnPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cpgnPath, err)
	}
	defer in.Close()

	var ledger cpgn.DedupLedger
	if opts.ledgerDir != "" {
		l, err := importledger.Open(opts.ledgerDir)
		if err != nil {
			return fmt.Errorf("opening ledger %s: %w", opts.ledgerDir, err)
		}
		defer l.Close()
		ledger = l
	}

	progress, err := cpgn.ImportReader(context.Background(), fakeengine.Oracle{}, in, w, cpgn.Options{
		Limits: cpgn.Limits{
			MinDepth: int32(experience.MinDepth),
			MaxDepth: 64,
			MaxValue: 30000,
		},
		Workers: opts.workers,
		Ledger:  ledger,
		OnProgress: func(p cpgn.Progress) {
			if opts.json {
				return
			}
			fmt.Printf("\rlines=%d processed=%d errored=%d ignored=%d staged=%d", p.LinesConsumed, p.GamesProcessed, p.GamesErrored, p.GamesIgnored, p.MovesStaged)
		},
	})
	if !opts.json {
		fmt.Println()
	}
	if err != nil {
		return err
	}
	if opts.json {
		return json.NewEncoder(os.Stdout).Encode(progress)
	}
	fmt.Printf("done: %d processed, %d errored, %d ignored, %d moves staged\n",
		progress.GamesProcessed, progress.GamesErrored, progress.GamesIgnored, progress.MovesStaged)
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "expctl:", err)
	os.Exit(1)
}
