package experience

// codec.go implements the on-disk format codecs described in spec §4.2/§6:
// a fixed 24-byte record, disambiguated by a leading ASCII signature. V2 is
// tried before V1 on load; V1 is read-only and triggers an upgrade rewrite.
//
// Grounded on arena-cache's layout-duplication discipline in
// internal/clockpro (a comment there warns "do NOT reorder fields — shard.go
// relies on identical layout"): this codec is equally strict about field
// order and size, since the 24-byte record size is a hard on-disk invariant
// (spec §3 invariant 6), not just a convention.
//
// © 2025 sugarchess authors. MIT License.

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sugarchess/experience/internal/unsafehelpers"
)

// entrySize is the fixed on-disk record size, in both V1 and V2.
const entrySize = 24

const (
	signatureV2 = "SugaR Experience version 2"
	signatureV1 = "SugaR"
)

// Codec abstracts over the on-disk format version. Signature detection is
// separated from record decoding so the store controller can try multiple
// codecs against the same opened file without re-reading bytes twice.
type Codec interface {
	// Version returns a codec identifier; higher means newer. Used to
	// decide whether a successful load must trigger an upgrade rewrite.
	Version() int

	// Signature returns the exact leading bytes this codec expects.
	Signature() []byte

	// ReadEntry decodes exactly one entrySize-byte record from r.
	ReadEntry(r io.Reader) (Entry, error)

	// WriteEntry encodes e as one entrySize-byte record to w.
	WriteEntry(w io.Writer, e Entry) error
}

// currentCodec is the codec used for all new writes.
var currentCodec Codec = v2Codec{}

// detectCodec matches header (the file's leading bytes, as many as the
// longest known signature) and returns the matching codec plus the number of
// entries the file claims to hold, per spec: entries_count = (length -
// sig_len) / entry_size, rejecting files whose body isn't an exact multiple
// of entrySize. V2 is tried before V1, per spec §4.2.
//
// size is the total file size in bytes, already known to the caller.
func detectCodec(header []byte, size int64) (Codec, int64, error) {
	for _, c := range []Codec{v2Codec{}, v1Codec{}} {
		sig := c.Signature()
		if int64(len(header)) < int64(len(sig)) {
			continue
		}
		if !bytesEqual(header[:len(sig)], sig) {
			continue
		}
		body := size - int64(len(sig))
		if body < 0 || body%entrySize != 0 {
			return nil, 0, fmt.Errorf("experience: file has %s signature but body size %d is not a multiple of %d bytes", c.Signature(), body, entrySize)
		}
		return c, body / entrySize, nil
	}
	return nil, 0, errNoSignature
}

var errNoSignature = fmt.Errorf("experience: no recognized signature (expected %q or %q)", signatureV2, signatureV1)

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// maxSignatureLen is how many header bytes the caller must read before
// calling detectCodec.
func maxSignatureLen() int {
	if len(signatureV2) > len(signatureV1) {
		return len(signatureV2)
	}
	return len(signatureV1)
}

/* -------------------------------------------------------------------------
   V2 codec (current)
   ------------------------------------------------------------------------- */

type v2Codec struct{}

func (v2Codec) Version() int       { return 2 }
func (v2Codec) Signature() []byte  { return unsafehelpers.StringToBytes(signatureV2) }

func (v2Codec) ReadEntry(r io.Reader) (Entry, error) {
	var buf [entrySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Entry{}, err
	}
	var e Entry
	e.Key = binary.LittleEndian.Uint64(buf[0:8])
	e.Move = binary.LittleEndian.Uint32(buf[8:12])
	e.Value = int32(binary.LittleEndian.Uint32(buf[12:16]))
	e.Depth = int32(binary.LittleEndian.Uint32(buf[16:20]))
	e.Count = binary.LittleEndian.Uint16(buf[20:22])
	// buf[22:24] is reserved zero padding.
	return e, nil
}

func (v2Codec) WriteEntry(w io.Writer, e Entry) error {
	var buf [entrySize]byte
	binary.LittleEndian.PutUint64(buf[0:8], e.Key)
	binary.LittleEndian.PutUint32(buf[8:12], e.Move)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(e.Value))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(e.Depth))
	binary.LittleEndian.PutUint16(buf[20:22], e.Count)
	buf[22], buf[23] = 0, 0
	_, err := w.Write(buf[:])
	return err
}

/* -------------------------------------------------------------------------
   V1 codec (legacy, read-only)
   ------------------------------------------------------------------------- */

type v1Codec struct{}

func (v1Codec) Version() int      { return 1 }
func (v1Codec) Signature() []byte { return unsafehelpers.StringToBytes(signatureV1) }

func (v1Codec) ReadEntry(r io.Reader) (Entry, error) {
	var buf [entrySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Entry{}, err
	}
	var e Entry
	e.Key = binary.LittleEndian.Uint64(buf[0:8])
	e.Move = binary.LittleEndian.Uint32(buf[8:12])
	e.Value = int32(binary.LittleEndian.Uint32(buf[12:16]))
	e.Depth = int32(binary.LittleEndian.Uint32(buf[16:20]))
	// buf[20:24] is the legacy padding (00 FF 00 FF); count defaults to 1.
	e.Count = 1
	return e, nil
}

// WriteEntry is implemented only so v1Codec satisfies Codec; V1 is never
// used to write — writes always upgrade to V2 per spec §4.2/§4.5.
func (v1Codec) WriteEntry(w io.Writer, e Entry) error {
	var buf [entrySize]byte
	binary.LittleEndian.PutUint64(buf[0:8], e.Key)
	binary.LittleEndian.PutUint32(buf[8:12], e.Move)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(e.Value))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(e.Depth))
	buf[20], buf[21], buf[22], buf[23] = 0x00, 0xFF, 0x00, 0xFF
	_, err := w.Write(buf[:])
	return err
}

// writeSignature writes c's signature bytes to w.
func writeSignature(w io.Writer, c Codec) error {
	_, err := w.Write(c.Signature())
	return err
}
