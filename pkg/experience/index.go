package experience

// index.go implements the position index: a hash map from position key to
// the head of that position's move chain. Chain mechanics (ordering,
// merge-on-match insertion, best-of walk) are delegated to internal/chain,
// which is generic over the element type; this file supplies Entry's
// compare/merge/identity rules as closures.
//
// Grounded on arena-cache's pkg/cache.go shard.index map[uint64]*entry[K,V]
// — same "hash map to intrusive-chain head" shape, repurposed from an
// LRU/CLOCK-Pro eviction index to a position-keyed, quality-ordered move
// index with no eviction at all (counts only saturate, per spec; entries
// are never displaced for capacity reasons).
//
// © 2025 sugarchess authors. MIT License.

import (
	"github.com/sugarchess/experience/internal/chain"
	"github.com/sugarchess/experience/pkg/engineiface"
)

// linkResult reports what happened to an entry passed to index.link.
type linkResult int

const (
	// linkInserted means e (or the node holding e's data) is now reachable
	// as part of its chain — the caller must not discard it.
	linkInserted linkResult = iota
	// linkMerged means e's observation was folded into an existing entry;
	// e itself is no longer part of any chain and the caller may discard
	// (or recycle) its storage.
	linkMerged
)

// index is the position index: key -> head of an ordered move chain.
// Apart from clearing the link of an entry that starts a new chain, index
// leaves Entry.next alone — chain surgery flows through internal/chain so the
// ordering invariants live in one place.
type index struct {
	heads map[engineiface.Key]*Entry
}

func newIndex() *index {
	return &index{heads: make(map[engineiface.Key]*Entry, 1024)}
}

// link inserts e into the chain for e.Key, merging with an existing
// (key, move) entry if present. Implements spec §4.4's link operation.
func (ix *index) link(e *Entry) linkResult {
	head, ok := ix.heads[e.Key]
	if !ok {
		setNext(e, nil)
		ix.heads[e.Key] = e
		return linkInserted
	}

	if head.Key != e.Key {
		// Programming bug per spec §7: a chain's head must always share its
		// lookup key. Invariant violations inside the core fail hard.
		panic("experience: index corruption — chain head key mismatch")
	}

	newHead, merged := chain.Insert(head, e, compare, sameIdentity, merge, next, setNext)
	ix.heads[e.Key] = newHead
	if merged {
		return linkMerged
	}
	return linkInserted
}

// probe returns the head of the chain for key, or nil if the position has no
// recorded experience.
func (ix *index) probe(key engineiface.Key) *Entry {
	return ix.heads[key]
}

// bestEntry returns the highest-quality entry in key's chain, or nil.
func (ix *index) bestEntry(key engineiface.Key) *Entry {
	return chain.Best(ix.heads[key], compare, next)
}

// chainSlice materializes key's chain in order, for show/inspect and tests.
func (ix *index) chainSlice(key engineiface.Key) []*Entry {
	return chain.ToSlice(ix.heads[key], next)
}

// walkAll calls fn for every chain head currently in the index. Used by full
// save to iterate every entry exactly once.
func (ix *index) walkAll(fn func(head *Entry)) {
	for _, head := range ix.heads {
		fn(head)
	}
}

// len returns the total number of entries across all chains (not the number
// of positions).
func (ix *index) len() int {
	n := 0
	for _, head := range ix.heads {
		n += chain.Len(head, next)
	}
	return n
}

// positions returns the number of distinct position keys in the index.
func (ix *index) positions() int {
	return len(ix.heads)
}

// reset empties the index. Ownership of the entries' backing storage is the
// caller's responsibility (pools / staging bins), matching spec §4.5 unload.
func (ix *index) reset() {
	ix.heads = make(map[engineiface.Key]*Entry, 1024)
}
