package store

import (
	"encoding/json"

	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/model"
)

// GetUTXO returns the output with uid, or ok=false if absent (spent or
// never produced) - spec.md §4.3's get(uid).
func (s *Store) GetUTXO(uid model.Uid) (model.UTXO, bool, error) {
	val, closer, err := s.db.Get(utxoKey(int64(uid)))
	if err == pebble.ErrNotFound {
		return model.UTXO{}, false, nil
	}
	if err != nil {
		return model.UTXO{}, false, err
	}
	defer closer.Close()

	var u model.UTXO
	if err := json.Unmarshal(val, &u); err != nil {
		return model.UTXO{}, false, err
	}
	return u, true, nil
}

// InsertUTXO stages a new output's primary row plus its owner and
// producing-transaction secondary indices (spec.md §4.3's insert).
func (b *Batch) InsertUTXO(u model.UTXO) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := b.pb.Set(utxoKey(int64(u.Uid)), data, nil); err != nil {
		return err
	}
	if err := b.pb.Set(utxoOwnerKey(u.Owner, int64(u.Uid)), nil, nil); err != nil {
		return err
	}
	if !u.ProducingTxHash.IsZero() {
		if err := b.pb.Set(utxoPTxKey(u.ProducingTxHash, u.Index), data, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUTXO stages removal of uid's row and its secondary index entries
// (spec.md §4.3's delete, used by the commit engine to retire spent
// inputs). It first reads the current row to know which index entries to
// remove - callers must hold Store.Lock across this call and Batch.Commit.
func (s *Store) DeleteUTXO(b *Batch, uid model.Uid) error {
	u, ok, err := s.GetUTXO(uid)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := b.pb.Delete(utxoKey(int64(uid)), nil); err != nil {
		return err
	}
	if err := b.pb.Delete(utxoOwnerKey(u.Owner, int64(uid)), nil); err != nil {
		return err
	}
	if !u.ProducingTxHash.IsZero() {
		if err := b.pb.Delete(utxoPTxKey(u.ProducingTxHash, u.Index), nil); err != nil {
			return err
		}
	}
	return nil
}

// SetSpender stages a reservation or release of uid's spender field
// (spec.md §4.3's set_spender). The owner index entry holds no row data,
// but the producing-tx index entry stores a copy of the row, so that copy
// is rewritten alongside the primary row.
func (s *Store) SetSpender(b *Batch, uid model.Uid, spender model.Uid) error {
	u, ok, err := s.GetUTXO(uid)
	if err != nil {
		return err
	}
	if !ok {
		return pebble.ErrNotFound
	}
	u.SpenderTxUid = spender
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := b.pb.Set(utxoKey(int64(uid)), data, nil); err != nil {
		return err
	}
	if !u.ProducingTxHash.IsZero() {
		return b.pb.Set(utxoPTxKey(u.ProducingTxHash, u.Index), data, nil)
	}
	return nil
}

// ByOwner returns every output owned by owner, optionally restricted to
// those still unspent (spec.md §4.3's by_owner). Iterating the owner
// index and re-fetching each row keeps the primary UTXO record the single
// source of truth for spender state.
func (s *Store) ByOwner(owner model.Hash, unusedOnly bool) ([]model.UTXO, error) {
	prefix := utxoOwnerPrefix([32]byte(owner))
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []model.UTXO
	for valid := iter.First(); valid; valid = iter.Next() {
		uid := int64(beUint64(iter.Key()[len(prefix):]))
		u, ok, err := s.GetUTXO(model.Uid(uid))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if unusedOnly && !u.IsUnspent() {
			continue
		}
		out = append(out, u)
	}
	return out, iter.Error()
}

// ByProducingTx returns every output produced by the transaction with
// hash (spec.md §4.3's by_producing_tx).
func (s *Store) ByProducingTx(hash model.Hash) ([]model.UTXO, error) {
	prefix := utxoPTxPrefix([32]byte(hash))
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []model.UTXO
	for valid := iter.First(); valid; valid = iter.Next() {
		var u model.UTXO
		if err := json.Unmarshal(iter.Value(), &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, iter.Error()
}

func beUint64(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}
