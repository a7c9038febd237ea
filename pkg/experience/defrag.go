package experience

// defrag.go implements spec §4.6: rewrite a file into canonical form —
// merging every duplicate observation and applying the same count-scaling
// rule a full save applies — without requiring a live engine session.
//
// Grounded on arena-cache's examples/disk_eject pattern of standing up a
// throwaway Cache purely to drive one operation end-to-end; Defrag here
// stands up a throwaway Store the same way, loads path synchronously, and
// issues a full save against it.
//
// © 2025 sugarchess authors. MIT License.

// DefragResult reports what Defrag did.
type DefragResult struct {
	EntriesBefore int
	EntriesAfter  int
}

// Defrag rewrites path in place: load it fully, then perform a full save,
// which merges duplicates and rescales counts per chain. It is safe to call
// on a file that is also open in a live Store elsewhere only if the caller
// has unloaded that Store first — Defrag does not coordinate with other
// processes or Stores.
func Defrag(path string, opts ...Option) (DefragResult, error) {
	s := NewStore(opts...)
	if err := s.Load(path, true); err != nil {
		return DefragResult{}, err
	}
	before := s.Len()

	if err := s.Save(true); err != nil {
		return DefragResult{}, err
	}
	after := s.Len()

	if err := s.Unload(); err != nil {
		return DefragResult{}, err
	}
	return DefragResult{EntriesBefore: before, EntriesAfter: after}, nil
}
