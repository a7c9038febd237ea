package experience

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefragCanonicalizesDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.exp")

	w, err := OpenWriter(path)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	entries := []Entry{
		{Key: 1, Move: 1, Value: 10, Depth: 6, Count: 1},
		{Key: 1, Move: 1, Value: 30, Depth: 6, Count: 1}, // duplicate (key, move)
		{Key: 2, Move: 2, Value: 5, Depth: 4, Count: 1},
	}
	for _, e := range entries {
		if err := w.WriteEntry(e); err != nil {
			t.Fatalf("WriteEntry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	result, err := Defrag(path)
	if err != nil {
		t.Fatalf("Defrag: %v", err)
	}
	if result.EntriesBefore != 2 {
		t.Fatalf("EntriesBefore = %d, want 2 (duplicates merge on load)", result.EntriesBefore)
	}
	if result.EntriesAfter != 2 {
		t.Fatalf("EntriesAfter = %d, want 2", result.EntriesAfter)
	}

	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected a .bak backup from the full save: %v", err)
	}

	s := NewStore()
	if err := s.Load(path, true); err != nil {
		t.Fatalf("reloading defragged file: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("defragged file entry count = %d, want 2", s.Len())
	}
	e := s.Probe(1)
	if e == nil || e.Value != 20 {
		t.Fatalf("equal-depth duplicates should average to (10+30)/2=20, got %+v", e)
	}
	if e.Count != 2 {
		t.Fatalf("merged count = %d, want 2", e.Count)
	}
}
