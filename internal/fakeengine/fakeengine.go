// Package fakeengine is a deterministic, rules-free stand-in for the real
// chess engine behind engineiface.Position/MoveOracle. It has no notion of
// legality, check, or material — it only needs to behave consistently
// enough for tests and benchmarks to exercise the Experience Store's
// load/save/probe/show/import paths without a real move generator, which is
// explicitly out of scope for this repository (spec §1).
//
// © 2025 sugarchess authors. MIT License.
package fakeengine

import (
	"hash/fnv"

	"github.com/sugarchess/experience/pkg/engineiface"
)

// Board is a synthetic position: a stack of keys (one per applied move, for
// LIFO undo) plus a ply counter.
type Board struct {
	keys    []engineiface.Key
	ply     int
	drawAt  map[int]bool
}

// NewBoard creates a board rooted at a key derived from fen.
func NewBoard(fen string) *Board {
	return &Board{keys: []engineiface.Key{hashString(fen)}}
}

// SetDrawAtPly makes IsDraw report true whenever GamePly equals ply. Test-only
// control hook; the real engine's draw predicate has no such knob.
func (b *Board) SetDrawAtPly(ply int) {
	if b.drawAt == nil {
		b.drawAt = make(map[int]bool)
	}
	b.drawAt[ply] = true
}

func (b *Board) Key() engineiface.Key { return b.keys[len(b.keys)-1] }

func (b *Board) DoMove(m engineiface.Move) {
	next := mixKey(b.Key(), m)
	b.keys = append(b.keys, next)
	b.ply++
}

func (b *Board) UndoMove() {
	b.keys = b.keys[:len(b.keys)-1]
	b.ply--
}

func (b *Board) IsDraw() bool     { return b.drawAt[b.ply] }
func (b *Board) GamePly() int     { return b.ply }
func (b *Board) SideToMove() int  { return b.ply % 2 }

// Oracle resolves FEN strings and move tokens deterministically by hashing;
// every syntactically non-empty token is treated as legal.
type Oracle struct{}

func (Oracle) ParseFEN(fen string) (engineiface.Position, error) {
	return NewBoard(fen), nil
}

func (Oracle) ResolveMove(pos engineiface.Position, token string) (engineiface.Move, bool) {
	if token == "" {
		return 0, false
	}
	return uint32(hashString(token)), true
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func mixKey(key engineiface.Key, m engineiface.Move) engineiface.Key {
	h := fnv.New64a()
	var buf [12]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(key >> (8 * i))
	}
	for i := 0; i < 4; i++ {
		buf[8+i] = byte(m >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
