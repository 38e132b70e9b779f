package store

import (
	"encoding/json"

	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/model"
)

// GetBlock returns the block at index, or ok=false if none is stored.
func (s *Store) GetBlock(index int64) (model.Block, bool, error) {
	val, closer, err := s.db.Get(blockKey(index))
	if err == pebble.ErrNotFound {
		return model.Block{}, false, nil
	}
	if err != nil {
		return model.Block{}, false, err
	}
	defer closer.Close()

	var blk model.Block
	if err := json.Unmarshal(val, &blk); err != nil {
		return model.Block{}, false, err
	}
	return blk, true, nil
}

// PutBlock stages a block insertion (spec.md §4.8 step 1).
func (b *Batch) PutBlock(blk model.Block) error {
	data, err := json.Marshal(blk)
	if err != nil {
		return err
	}
	return b.pb.Set(blockKey(int64(blk.Index)), data, nil)
}

// LatestBlockIndex scans for the highest block index stored, the same
// iterator-bounded-by-prefix technique as LatestBlock in
// evm-ingestion/storage/pebble.go. Returns -1 if the chain is empty.
func (s *Store) LatestBlockIndex() (int64, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefixBlock),
		UpperBound: prefixUpperBound([]byte(prefixBlock)),
	})
	if err != nil {
		return -1, err
	}
	defer iter.Close()

	if !iter.Last() {
		return -1, nil
	}
	var blk model.Block
	if err := json.Unmarshal(iter.Value(), &blk); err != nil {
		return -1, err
	}
	return int64(blk.Index), nil
}
