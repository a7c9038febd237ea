// Package engineiface declares the narrow surface this repository needs from
// the surrounding chess engine. The Experience Store never generates moves,
// parses FEN itself, or evaluates a position — it only records and replays
// what the engine tells it. Keeping the boundary this small is what lets the
// store be tested and reasoned about without a real move generator.
package engineiface

// Key is the engine's 64-bit Zobrist-style position fingerprint. Values 0 and
// ^uint64(0) are reserved sentinels and must never be produced by a real
// position; the engine's key schedule guarantees that.
type Key = uint64

// Move is an opaque, engine-defined encoding of a chess move. This package
// only ever compares moves for equality; it never decodes them.
type Move = uint32

// Position is the minimal look-ahead surface the quality/show subsystem
// needs: apply and undo a move, and ask whether the current position is a
// draw. Implementations are expected to be mutable boards with an internal
// undo stack; DoMove/UndoMove calls are always paired and nested in LIFO
// order by callers in this repository.
type Position interface {
	Key() Key
	DoMove(m Move)
	UndoMove()
	IsDraw() bool
	GamePly() int

	// SideToMove reports which color is on move: 0 for white, 1 for black.
	// The CPGN importer uses this to attribute a move's score to the correct
	// absolute color when accumulating per-color result weights (spec §4.8).
	SideToMove() int
}

// MoveOracle resolves external move/position representations into the
// engine's internal encoding. It is the only place FEN strings and
// long-algebraic move tokens are interpreted, and it is always supplied by
// the host engine — this repository has no chess rules of its own.
type MoveOracle interface {
	// ParseFEN builds a Position from a FEN string, or returns an error if
	// the FEN is malformed.
	ParseFEN(fen string) (Position, error)

	// ResolveMove finds the legal move in pos matching the long-algebraic
	// token (e.g. "e2e4", "e7e8q"), stripped of any trailing "+"/"#"/CR/LF
	// by the caller. ok is false when no legal move matches.
	ResolveMove(pos Position, token string) (m Move, ok bool)
}
