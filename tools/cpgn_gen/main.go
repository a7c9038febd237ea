// This generator lives in tools/cpgn_gen to keep generators out of the bench
// package, same layout rationale arena-cache used for tools/dataset_gen.
//
// tools/cpgn_gen generates synthetic compact-PGN game lines for benchmarking
// and testing the CPGN importer, without needing a real PGN corpus or a
// running chess engine.
//
// Usage:
//
//	go run ./tools/cpgn_gen -n 10000 -plies 40 -seed 42 -out games.cpgn
//
// Flags:
//
//	-n      number of games to generate (default 1000)
//	-plies  plies per game (default 40, must be >= MinGamePlies)
//	-seed   RNG seed (default current time)
//	-out    output file (default stdout)
//
// Grounded on arena-cache's tools/dataset_gen (flag-driven deterministic
// generator, bufio-buffered stdout-or-file output); the distribution here is
// "decisive scores for White's moves, near-equal scores for Black's" instead of uniform
// or Zipf-distributed keys, since a CPGN line needs to look like a real
// believable game rather than a single random number.
//
// © 2025 sugarchess authors. MIT License.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		n       = flag.Int("n", 1000, "number of games to generate")
		plies   = flag.Int("plies", 40, "plies per game")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *plies < 16 {
		fmt.Fprintln(os.Stderr, "plies must be >= 16 to pass the importer's minimum game length")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	for i := 0; i < *n; i++ {
		fmt.Fprintln(w, generateLine(rnd, *plies, i))
	}
}

// generateLine produces one CPGN line whose scores consistently favor
// white, matching a declared "w" result, so generated corpora pass the
// importer's own result-consistency check by construction.
func generateLine(rnd *rand.Rand, plies, gameIdx int) string {
	tokens := make([]string, 0, plies)
	for p := 0; p < plies; p++ {
		depth := 4 + rnd.Intn(20)
		var score int
		if p%2 == 0 {
			score = 350 + rnd.Intn(400) // White mover: decisively good for White
		} else {
			score = -30 + rnd.Intn(60) // Black mover: roughly equal
		}
		tokens = append(tokens, fmt.Sprintf("g%dm%d:%d:%d", gameIdx, p, score, depth))
	}
	fen := fmt.Sprintf("synthetic-%d", gameIdx)
	return fmt.Sprintf("{ %s, w, %s }", fen, strings.Join(tokens, ", "))
}
