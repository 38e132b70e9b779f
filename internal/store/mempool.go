package store

import (
	"encoding/json"

	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/model"
)

// GetMempoolTx returns a pending transaction by uid.
func (s *Store) GetMempoolTx(uid model.Uid) (model.Transaction, bool, error) {
	val, closer, err := s.db.Get(mempoolKey(int64(uid)))
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

// PutMempoolTx stages the append of a newly-submitted transaction.
func (b *Batch) PutMempoolTx(tx model.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return b.pb.Set(mempoolKey(int64(tx.Uid)), data, nil)
}

// RemoveMempoolTx stages the erasure of a mempool row (spec.md §4.4's
// remove). It does not release input reservations - callers go through
// the commit engine's ReleaseInputs for that, per spec.md §4.4.
func (b *Batch) RemoveMempoolTx(uid model.Uid) error {
	return b.pb.Delete(mempoolKey(int64(uid)), nil)
}

// DrainMempool returns up to limit pending transactions (all of them when
// limit <= 0) in ascending uid order, the order of the uid-keyed mempool
// rows (spec.md §4.4's drain). The uid is whatever the submitter set and
// no insertion sequence is stored, so this is submission order only when
// uids ascend with submission.
func (s *Store) DrainMempool(limit int) ([]model.Transaction, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefixMempool),
		UpperBound: prefixUpperBound([]byte(prefixMempool)),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []model.Transaction
	for valid := iter.First(); valid && (limit <= 0 || len(out) < limit); valid = iter.Next() {
		var tx model.Transaction
		if err := json.Unmarshal(iter.Value(), &tx); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, iter.Error()
}
