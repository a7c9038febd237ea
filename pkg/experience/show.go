package experience

// show.go implements spec §4.9 (Show/inspect) and §4.10 (quality via
// look-ahead): ranking a position's chain by a forward-looking quality
// score instead of raw pseudo-quality, using the engine's Position
// interface to walk plies and undo them again.
//
// Grounded on arena-cache's cmd/arena-cache-inspect tool, which also
// combines a live data structure (cache snapshot) with a derived ranking
// for human display; the look-ahead walk itself has no arena-cache
// analogue and is built directly from spec §4.10's algorithm.
//
// © 2025 sugarchess authors. MIT License.

import (
	"fmt"
	"sort"

	"github.com/sugarchess/experience/pkg/engineiface"
)

// ShowEntry is one ranked row of a Show listing.
type ShowEntry struct {
	Move     engineiface.Move
	Depth    int32
	Value    int32
	Count    uint16
	Quality  float64
	MayDraw  bool
}

// MateScore marks the threshold above/below which Value is reported as a
// mate distance rather than a centipawn score. FormatValue reports that
// distance as how far |value| lies below 1<<21; this package only formats
// such scores, the engine produces them.
const MateScore = 1 << 20

// Show returns key's chain ranked by look-ahead quality descending (stable
// sort, ties keep chain order), per spec §4.9. pos must already be
// positioned at key (Store has no way to derive a Position from a bare
// key — that translation belongs to the engine via engineiface).
func (s *Store) Show(pos engineiface.Position, evalImportance int) ([]ShowEntry, error) {
	if pos == nil {
		return nil, fmt.Errorf("experience: Show requires a Position positioned at the probed key")
	}
	key := pos.Key()
	chainEntries := s.Chain(key)
	if len(chainEntries) == 0 {
		return nil, nil
	}

	out := make([]ShowEntry, 0, len(chainEntries))
	for _, e := range chainEntries {
		q, maybeDraw := s.quality(pos, e, evalImportance)
		out = append(out, ShowEntry{
			Move:    e.Move,
			Depth:   e.Depth,
			Value:   e.Value,
			Count:   e.Count,
			Quality: q,
			MayDraw: maybeDraw,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Quality > out[j].Quality })
	return out, nil
}

// FormatValue renders a value as a UCI-style score: "mate N" once |value|
// crosses MateScore, otherwise a plain centipawn integer.
func FormatValue(value int32) string {
	if value >= MateScore {
		return fmt.Sprintf("mate %d", (1<<21-value))
	}
	if value <= -MateScore {
		return fmt.Sprintf("mate %d", -(1<<21+value))
	}
	return fmt.Sprintf("%d", value)
}

// quality implements spec §4.10. pos is mutated and restored (DoMove/UndoMove
// are always balanced before quality returns, LIFO).
func (s *Store) quality(pos engineiface.Position, e *Entry, evalImportance int) (float64, bool) {
	q0 := float64(e.Count) * float64(10-evalImportance)

	pos.DoMove(e.Move)
	maybeDraw := pos.IsDraw()

	if evalImportance == 0 {
		pos.UndoMove()
		return q0 / 10, maybeDraw
	}

	var sum [2]float64
	var weight [2]int
	last := [2]*Entry{e, e}

	plies := 1
	for plies < 10 {
		key := pos.Key()
		next := s.bestAt(key)
		if next == nil {
			break
		}
		color := (plies - 1) % 2
		sum[color] += float64(next.Value) - float64(last[color].Value)
		weight[color]++
		last[color] = next

		pos.DoMove(next.Move)
		plies++
	}
	for ; plies > 0; plies-- {
		pos.UndoMove()
	}

	totalWeight := weight[0] + weight[1]
	if totalWeight > 0 {
		themSum := 0.0
		if weight[1] > 0 {
			themSum = sum[1]
		}
		q0 += (sum[0] - themSum) * float64(evalImportance) / float64(totalWeight)
	}
	return q0 / 10, maybeDraw
}

// bestAt returns the highest pseudo-quality entry for key without waiting on
// a load or re-checking gates — used only inside the already-loaded,
// already-gated look-ahead walk.
func (s *Store) bestAt(key engineiface.Key) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.bestEntry(key)
}
