package store

import (
	"encoding/json"

	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/model"
)

// GetTransaction returns a committed transaction by uid.
func (s *Store) GetTransaction(uid model.Uid) (model.Transaction, bool, error) {
	val, closer, err := s.db.Get(txKey(int64(uid)))
	if err == pebble.ErrNotFound {
		return model.Transaction{}, false, nil
	}
	if err != nil {
		return model.Transaction{}, false, err
	}
	defer closer.Close()

	var tx model.Transaction
	if err := json.Unmarshal(val, &tx); err != nil {
		return model.Transaction{}, false, err
	}
	return tx, true, nil
}

// PutTransaction stages a committed transaction's row (spec.md §4.8 step 2a).
func (b *Batch) PutTransaction(tx model.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return b.pb.Set(txKey(int64(tx.Uid)), data, nil)
}
