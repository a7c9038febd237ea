package experience

// entry.go defines the fixed-size experience record and the two operations
// that give it meaning: merge (fold a re-observation into an existing
// record) and compare (the total order used for chain position and
// best-move selection).
//
// Grounded on arena-cache's pkg/cache.go entry[K,V] struct: same idea of a
// compact, cache-line-friendly record carrying just enough metadata plus an
// intrusive next-link, adapted here from an LRU/CLOCK-Pro metadata node to a
// position-keyed search-experience record.
//
// © 2025 sugarchess authors. MIT License.

import (
	"math"

	"github.com/sugarchess/experience/pkg/engineiface"
)

// MinDepth is the minimum search depth, in plies, an entry must carry to be
// persisted to disk. Entries below this depth may still live transiently in
// the index (e.g. freshly staged, not yet saved) but are dropped on save.
const MinDepth = 4

// Entry is one experience record: a position key paired with one move the
// engine has searched, plus that move's last-known value, depth and
// observation count.
type Entry struct {
	Key   engineiface.Key
	Move  engineiface.Move
	Value int32
	Depth int32
	Count uint16

	// next links to the following entry in the same position's chain. Owned
	// by whichever index currently holds this entry; nil at the tail.
	next *Entry
}

// next, setNext let the generic chain package thread entries together
// without knowing Entry's layout.
func next(e *Entry) *Entry      { return e.next }
func setNext(e, n *Entry) { e.next = n }

// sameIdentity reports whether a and b refer to the same (key, move) pair —
// the identity the position index merges re-observations on.
func sameIdentity(a, b *Entry) bool {
	return a.Key == b.Key && a.Move == b.Move
}

// saturatingAddU16 adds two uint16 counters, clamping at math.MaxUint16
// instead of wrapping — count must never roll over to a small number after
// enough re-observations.
func saturatingAddU16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	if sum > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(sum)
}

// merge folds b's observation into a, in place, per spec: counts sum
// (saturating), and value/depth are taken from whichever entry searched
// deeper — ties average the value toward zero.
//
// Preconditions: a.Key == b.Key && a.Move == b.Move.
func merge(a, b *Entry) {
	a.Count = saturatingAddU16(a.Count, b.Count)
	switch {
	case a.Depth == b.Depth:
		a.Value = (a.Value + b.Value) / 2
	case a.Depth < b.Depth:
		a.Value = b.Value
		a.Depth = b.Depth
	default:
		// a already has the deeper search; keep a.Value/a.Depth as-is.
	}
}

// maxI32 returns the larger of x and floor — used with floor 1 for the
// compare weighting terms, which must never zero out the product.
func maxI32(x, floor int32) int32 {
	if x > floor {
		return x
	}
	return floor
}

// pseudoQuality computes the sa/sb weighting term from spec §4.1:
// value * max(depth/10, 1) * max(count/3, 1).
func pseudoQuality(value, depth int32, count uint16) int64 {
	depthTerm := maxI32(depth/10, 1)
	countTerm := maxI32(int32(count)/3, 1)
	return int64(value) * int64(depthTerm) * int64(countTerm)
}

// compare returns a signed ordering value for a versus b; higher means a is
// "better" (should sort earlier in its chain, and wins head-to-head best-move
// comparisons). Implements the V2 compare rule from spec §4.1.
func compare(a, b *Entry) int64 {
	sa := pseudoQuality(a.Value, a.Depth, a.Count)
	sb := pseudoQuality(b.Value, b.Depth, b.Count)
	if sa != sb {
		return sa - sb
	}
	if a.Count != b.Count {
		return int64(a.Count) - int64(b.Count)
	}
	return int64(a.Depth - b.Depth)
}

// compareV1 is the legacy (read-only) ordering rule used only while
// upgrading a V1 file in memory: value * max(depth/5, 1), no count factor,
// ties break on depth. It must never be used to order or write V2 data.
func compareV1(a, b *Entry) int64 {
	da := maxI32(a.Depth/5, 1)
	db := maxI32(b.Depth/5, 1)
	sa := int64(a.Value) * int64(da)
	sb := int64(b.Value) * int64(db)
	if sa != sb {
		return sa - sb
	}
	return int64(a.Depth - b.Depth)
}
