package experience

import (
	"bytes"
	"testing"
)

func TestV2RoundTrip(t *testing.T) {
	want := Entry{Key: 0x0123456789abcdef, Move: 0xdeadbeef, Value: -12345, Depth: 22, Count: 60000}

	var buf bytes.Buffer
	if err := v2Codec{}.WriteEntry(&buf, want); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	if buf.Len() != entrySize {
		t.Fatalf("encoded size = %d, want %d", buf.Len(), entrySize)
	}

	got, err := v2Codec{}.ReadEntry(&buf)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if got.Key != want.Key || got.Move != want.Move || got.Value != want.Value ||
		got.Depth != want.Depth || got.Count != want.Count {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestV1ReadDefaultsCountToOne(t *testing.T) {
	var buf bytes.Buffer
	if err := v1Codec{}.WriteEntry(&buf, Entry{Key: 1, Move: 2, Value: 3, Depth: 4, Count: 999}); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	got, err := v1Codec{}.ReadEntry(&buf)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if got.Count != 1 {
		t.Fatalf("v1 read count = %d, want 1 (count is not stored in V1)", got.Count)
	}
}

func TestDetectCodecPrefersV2(t *testing.T) {
	body := make([]byte, entrySize*3)
	size := int64(len(signatureV2) + len(body))
	header := []byte(signatureV2)

	c, count, err := detectCodec(header, size)
	if err != nil {
		t.Fatalf("detectCodec: %v", err)
	}
	if c.Version() != 2 {
		t.Fatalf("version = %d, want 2", c.Version())
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestDetectCodecFallsBackToV1(t *testing.T) {
	body := make([]byte, entrySize*2)
	size := int64(len(signatureV1) + len(body))
	header := []byte(signatureV1)

	c, count, err := detectCodec(header, size)
	if err != nil {
		t.Fatalf("detectCodec: %v", err)
	}
	if c.Version() != 1 {
		t.Fatalf("version = %d, want 1", c.Version())
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestDetectCodecRejectsUnknownSignature(t *testing.T) {
	header := []byte("not a recognized signature..")
	if _, _, err := detectCodec(header, int64(len(header))); err == nil {
		t.Fatal("expected error for unrecognized signature")
	}
}

func TestDetectCodecRejectsPartialRecord(t *testing.T) {
	header := []byte(signatureV2)
	size := int64(len(signatureV2) + entrySize + 1) // one stray byte
	if _, _, err := detectCodec(header, size); err == nil {
		t.Fatal("expected error for body size not a multiple of entrySize")
	}
}
