package store

import (
	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/consts"
	"github.com/containerman17/sanchain/internal/model"
)

// LastUid and SaveLastUid implement idgen.Watermark, the same
// GetWatermark/SaveWatermark split the teacher uses in
// indexers/pcx/db/pebble.go, specialized to an 8-byte big-endian Uid
// instead of a block height.
func (s *Store) LastUid() (model.Uid, error) {
	val, closer, err := s.db.Get([]byte(keyIdgenWatermark))
	if err == pebble.ErrNotFound {
		return model.NoUid, nil
	}
	if err != nil {
		return model.NoUid, err
	}
	defer closer.Close()
	if len(val) != 8 {
		return model.NoUid, nil
	}
	return model.Uid(int64(beUint64(val))), nil
}

// SaveLastUid durably advances the idgen watermark outside of any block
// commit batch - it is called once per minted id, independent of whether
// that id is ever actually submitted or committed.
func (s *Store) SaveLastUid(uid model.Uid) error {
	writeOpts := pebble.NoSync
	if consts.StoreSyncWrites {
		writeOpts = pebble.Sync
	}
	return s.db.Set([]byte(keyIdgenWatermark), be64(int64(uid)), writeOpts)
}
