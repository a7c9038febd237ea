package experience

import "fmt"

// merge.go implements spec §4.7: an n-way union of experience files into one
// output file. Each input is loaded in turn into the same in-memory index,
// which folds duplicate (key, move) observations via the usual link/merge
// rule — the same mechanism a single file's own internal duplicates go
// through — so the set of (key, move) pairs in the output does not depend on
// input order. Values are not always order-independent: equal-depth
// observations are averaged pairwise as they are linked, so with three or
// more equal-depth inputs for one pair the surviving value depends on order.
//
// © 2025 sugarchess authors. MIT License.

// MergeResult reports what Merge produced.
type MergeResult struct {
	InputsMerged  int
	EntriesTotal  int
	Positions     int
}

// Merge loads every file in inputs (in order) into one index and writes the
// canonical union to output. inputs must be non-empty. If output matches an
// existing file's path, that file is backed up (.bak) exactly as a normal
// full save would.
func Merge(output string, inputs []string, opts ...Option) (MergeResult, error) {
	if len(inputs) == 0 {
		return MergeResult{}, fmt.Errorf("experience: merge requires at least one input file")
	}

	s := NewStore(opts...)
	for _, in := range inputs {
		if err := s.Load(in, true); err != nil {
			return MergeResult{}, fmt.Errorf("experience: merge: loading %s: %w", in, err)
		}
	}

	s.Reassociate(output)
	if err := s.Save(true); err != nil {
		return MergeResult{}, fmt.Errorf("experience: merge: saving %s: %w", output, err)
	}

	result := MergeResult{
		InputsMerged: len(inputs),
		EntriesTotal: s.Len(),
		Positions:    s.Positions(),
	}
	if err := s.Unload(); err != nil {
		return result, err
	}
	return result, nil
}
