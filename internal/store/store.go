// Package store is the single durable key-addressable store backing
// blocks, transactions, the UTXO set, the mempool and the config/head
// state (spec.md §6), implemented over a standalone pebble database the
// way evm-ingestion/storage/pebble.go backs block storage.
package store

import (
	"log"

	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/consts"
)

// quietLogger silences pebble's info logging and routes errors through
// the standard logger, grounded on indexers/pcx/db/pebble.go's
// quietLogger.
type quietLogger struct{}

func (quietLogger) Infof(format string, args ...interface{}) {}
func (quietLogger) Errorf(format string, args ...interface{}) {
	log.Printf("[store] "+format, args...)
}
func (quietLogger) Fatalf(format string, args ...interface{}) {
	log.Fatalf("[store] "+format, args...)
}

// Store is the node's persistent ledger: a single pebble database
// serving all four logical tables plus the config row.
//
// spec.md §5 calls the core "single-writer per store": Lock/Unlock expose
// the critical section that serializes mempool submission (input
// reservation) against block commit, while reads proceed unserialized
// directly against pebble's own MVCC snapshots.
type Store struct {
	db *pebble.DB
	mu chan struct{}
}

// Open opens (creating if absent) the pebble database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{Logger: quietLogger{}})
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, mu: make(chan struct{}, 1)}
	s.mu <- struct{}{}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lock acquires the store's single writer critical section. Every caller
// that reserves mempool inputs or commits a block must hold this for the
// whole read-modify-write sequence.
func (s *Store) Lock() { <-s.mu }

// Unlock releases the critical section acquired by Lock.
func (s *Store) Unlock() { s.mu <- struct{}{} }

// Batch is one atomic unit of writes across any of the store's tables -
// the mechanism spec.md §4.8 requires for commit() and §4.4 for
// submit()'s reservation.
type Batch struct {
	pb *pebble.Batch
}

// NewBatch opens a new atomic write batch. Callers must hold Lock for the
// duration between NewBatch and Commit.
func (s *Store) NewBatch() *Batch {
	return &Batch{pb: s.db.NewBatch()}
}

// Commit durably applies every write staged in b as one atomic unit.
func (b *Batch) Commit() error {
	writeOpts := pebble.NoSync
	if consts.StoreSyncWrites {
		writeOpts = pebble.Sync
	}
	return b.pb.Commit(writeOpts)
}

// Close discards a batch without applying it - used when a caller aborts
// a reservation or commit attempt partway through.
func (b *Batch) Close() error {
	return b.pb.Close()
}
