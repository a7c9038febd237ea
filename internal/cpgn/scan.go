// Package cpgn implements the compact-PGN importer described in spec §4.8:
// parsing one game per line, resolving its moves through the engine's move
// oracle, deriving a believed result from the recorded scores, and staging
// validated (key, move, value, depth) observations for any game that
// passes the acceptance rule.
//
// There is no arena-cache analogue for a PGN-like parser; the concurrent
// fan-in/fan-out shape (many parser goroutines, one writer) is grounded on
// arena-cache's use of golang.org/x/sync/errgroup-adjacent patterns in
// pkg/loader.go (arena-cache uses singleflight, the sibling package in the
// same module, for the same "coordinate many goroutines, one result"
// problem); this package reaches for errgroup directly since it needs
// first-error cancellation across a worker pool, not request de-duplication.
//
// © 2025 sugarchess authors. MIT License.
package cpgn

import (
	"fmt"
	"strconv"
	"strings"
)

// RawGame is one line's fields, split but not yet semantically validated.
type RawGame struct {
	FEN        string
	Result     string
	MoveTokens []string
}

// ScanLine splits one "{ fen, result, m1[:score:depth], ... }" line into its
// raw fields. It performs only syntactic validation (braces present, at
// least a FEN and result field); move tokens are parsed by ParseMoveToken.
func ScanLine(line string) (RawGame, error) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || line[0] != '{' || line[len(line)-1] != '}' {
		return RawGame{}, fmt.Errorf("cpgn: line missing '{' ... '}' delimiters")
	}
	body := line[1 : len(line)-1]
	fields := strings.Split(body, ",")
	if len(fields) < 2 {
		return RawGame{}, fmt.Errorf("cpgn: line has fewer than 2 fields (need fen, result)")
	}

	fen := strings.TrimSpace(fields[0])
	result := strings.TrimSpace(fields[1])
	if fen == "" {
		return RawGame{}, fmt.Errorf("cpgn: empty fen field")
	}
	switch result {
	case "w", "b", "d":
	default:
		return RawGame{}, fmt.Errorf("cpgn: unknown result code %q (want w, b, or d)", result)
	}

	moves := make([]string, 0, len(fields)-2)
	for _, tok := range fields[2:] {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		moves = append(moves, tok)
	}
	return RawGame{FEN: fen, Result: result, MoveTokens: moves}, nil
}

// MoveToken is one parsed "m1[:score:depth]" field.
type MoveToken struct {
	Text     string // long-algebraic move, with trailing +/#/CR/LF stripped
	HasEval  bool
	Score    int32
	Depth    int32
}

// ParseMoveToken strips trailing "+", "#", and CR/LF from the move text and,
// if present, parses the ":score:depth" suffix. A token with no suffix is
// valid (a move played but never searched at save time).
func ParseMoveToken(raw string) (MoveToken, error) {
	raw = strings.TrimRight(raw, "\r\n")
	parts := strings.Split(raw, ":")

	move := strings.TrimRight(parts[0], "+#")
	if move == "" {
		return MoveToken{}, fmt.Errorf("cpgn: empty move token")
	}
	if len(parts) == 1 {
		return MoveToken{Text: move}, nil
	}
	if len(parts) != 3 {
		return MoveToken{}, fmt.Errorf("cpgn: malformed move token %q", raw)
	}

	score, err := strconv.Atoi(parts[1])
	if err != nil {
		return MoveToken{}, fmt.Errorf("cpgn: bad score in %q: %w", raw, err)
	}
	depth, err := strconv.Atoi(parts[2])
	if err != nil {
		return MoveToken{}, fmt.Errorf("cpgn: bad depth in %q: %w", raw, err)
	}
	return MoveToken{Text: move, HasEval: true, Score: int32(score), Depth: int32(depth)}, nil
}
