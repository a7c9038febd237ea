// Package importledger provides an optional, on-disk de-duplication ledger
// for the CPGN importer: a small Badger database mapping a game line's hash
// to the time it was first imported, so re-running an import over
// overlapping input files doesn't re-stage the same games.
//
// Grounded directly on arena-cache's examples/disk_eject pattern of using
// Badger as a small embedded KV store alongside the main cache — there it
// held evicted cache values; here it holds "have we already imported this
// game" markers. Renamed from an eviction sink to an idempotency ledger,
// same dependency, same embedding style (no separate server process).
//
// © 2025 sugarchess authors. MIT License.
package importledger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Ledger is a Badger-backed store of "hash -> first-seen unix time".
// Implements cpgn.DedupLedger.
type Ledger struct {
	db *badger.DB
}

// Open opens (creating if necessary) a ledger database rooted at dir.
func Open(dir string) (*Ledger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("importledger: open %s: %w", dir, err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// SeenAndMark reports whether hash was already recorded, and if not, records
// it with the current time. Implements cpgn.DedupLedger.
func (l *Ledger) SeenAndMark(hash uint64) (bool, error) {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], hash)

	seen := false
	err := l.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key[:])
		switch {
		case err == nil:
			seen = true
			return nil
		case err == badger.ErrKeyNotFound:
			var val [8]byte
			binary.BigEndian.PutUint64(val[:], uint64(nowUnix()))
			return txn.Set(key[:], val[:])
		default:
			return err
		}
	})
	return seen, err
}

// FirstSeen returns when hash was first recorded, or the zero time if it has
// never been seen.
func (l *Ledger) FirstSeen(hash uint64) (time.Time, error) {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], hash)

	var at time.Time
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key[:])
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			at = time.Unix(int64(binary.BigEndian.Uint64(val)), 0)
			return nil
		})
	})
	return at, err
}

// nowUnix is isolated behind a var so tests can stub it without depending
// on wall-clock time.
var nowUnix = func() int64 { return time.Now().Unix() }
