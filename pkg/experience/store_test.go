package experience

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestTouchCreatesSignatureOnlyFile(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "book.exp")

	if err := s.Touch(path); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != signatureV2 {
		t.Fatalf("touched file contents = %q, want just the signature", data)
	}
}

func TestTouchIsNoOpWhenDisabled(t *testing.T) {
	s := NewStore()
	s.SetEnabled(false)
	path := filepath.Join(t.TempDir(), "book.exp")

	if err := s.Touch(path); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("Touch while disabled should not create a file")
	}
}

func TestAddAndProbeRoundTrip(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "book.exp")
	if err := s.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if ok := s.AddPVExperience(42, 7, 120, 10); !ok {
		t.Fatal("AddPVExperience rejected on a fresh, enabled store")
	}

	e := s.Probe(42)
	if e == nil {
		t.Fatal("Probe(42) = nil, want the just-added entry")
	}
	if e.Value != 120 || e.Depth != 10 || e.Count != 1 {
		t.Fatalf("probed entry = %+v, want value=120 depth=10 count=1", e)
	}
}

func TestSaveIncrementalThenReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.exp")

	s := NewStore()
	if err := s.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.AddPVExperience(1, 1, 100, 12)
	s.AddPVExperience(2, 2, -50, 8)
	if err := s.Save(false); err != nil {
		t.Fatalf("Save(false): %v", err)
	}
	if err := s.Unload(); err != nil {
		t.Fatalf("Unload: %v", err)
	}

	reloaded := NewStore()
	if err := reloaded.Load(path, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded entry count = %d, want 2", reloaded.Len())
	}
	if e := reloaded.Probe(1); e == nil || e.Value != 100 {
		t.Fatalf("Probe(1) = %+v, want value=100", e)
	}
}

func TestWriteGatesRejectAdds(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "book.exp")
	if err := s.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s.SetReadonly(true)
	if s.AddPVExperience(1, 1, 1, 10) {
		t.Fatal("add should be rejected while readonly")
	}
	s.SetReadonly(false)

	s.PauseLearning()
	if s.AddPVExperience(1, 1, 1, 10) {
		t.Fatal("add should be rejected while paused")
	}
	s.ResumeLearning()

	s.SetEnabled(false)
	if s.AddPVExperience(1, 1, 1, 10) {
		t.Fatal("add should be rejected while disabled")
	}
	s.SetEnabled(true)

	if !s.AddPVExperience(1, 1, 1, 10) {
		t.Fatal("add should succeed once all gates are clear")
	}
}

func TestBenchModeSingleShotPV(t *testing.T) {
	s := NewStore()
	path := filepath.Join(t.TempDir(), "book.exp")
	if err := s.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s.EnterBenchMode()
	if !s.AddPVExperience(1, 1, 100, 10) {
		t.Fatal("first PV add during bench mode should be accepted")
	}
	if s.AddPVExperience(2, 2, 100, 10) {
		t.Fatal("second PV add during the same bench run should be rejected")
	}
	if s.AddMultiPVExperience(3, 3, 100, 10) {
		t.Fatal("MultiPV adds must be dropped outright during bench mode")
	}
	s.ExitBenchMode()

	if !s.AddPVExperience(4, 4, 100, 10) {
		t.Fatal("adds should resume normally once bench mode exits")
	}
}

func TestSaveAllScalesCountsAndDedupsOnReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.exp")

	s := NewStore()
	if err := s.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Two observations of the same (key, move): they must merge into a
	// single chain entry with summed counts before any save.
	s.AddPVExperience(9, 9, 50, 10)
	s.AddPVExperience(9, 9, 70, 14)
	if s.Len() != 1 {
		t.Fatalf("in-memory entries after duplicate adds = %d, want 1 (merged on link)", s.Len())
	}
	if err := s.Save(true); err != nil {
		t.Fatalf("Save(true): %v", err)
	}

	reloaded := NewStore()
	if err := reloaded.Load(path, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := reloaded.Probe(9)
	if e == nil {
		t.Fatal("Probe(9) = nil after full save/reload")
	}
	if e.Count != 2 {
		t.Fatalf("count after full save = %d, want 2", e.Count)
	}
	if e.Value != 70 || e.Depth != 14 {
		t.Fatalf("deeper observation should win: value=%d depth=%d", e.Value, e.Depth)
	}
}

func TestLoadV1FileUpgradesToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.exp")

	var buf bytes.Buffer
	buf.WriteString(signatureV1)
	if err := (v1Codec{}).WriteEntry(&buf, Entry{Key: 5, Move: 5, Value: 33, Depth: 9}); err != nil {
		t.Fatalf("writing legacy fixture: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewStore()
	if err := s.Load(path, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	summary, _ := s.LastLoadSummary()
	if !summary.Upgraded {
		t.Fatal("loading a V1 file should report Upgraded = true")
	}

	rewritten, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile after upgrade: %v", err)
	}
	if !bytes.HasPrefix(rewritten, []byte(signatureV2)) {
		n := len(rewritten)
		if n > len(signatureV2) {
			n = len(signatureV2)
		}
		t.Fatalf("file should carry the V2 signature after upgrade, got prefix %q", rewritten[:n])
	}
}
