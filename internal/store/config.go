package store

import (
	"encoding/json"

	"github.com/cockroachdb/pebble/v2"

	"github.com/containerman17/sanchain/internal/model"
)

// GetConfig returns the current head state, or model.DefaultConfig() if
// the store has never had one written (a brand new node).
func (s *Store) GetConfig() (model.Config, error) {
	val, closer, err := s.db.Get([]byte(keyConfig))
	if err == pebble.ErrNotFound {
		return model.DefaultConfig(), nil
	}
	if err != nil {
		return model.Config{}, err
	}
	defer closer.Close()

	var cfg model.Config
	if err := json.Unmarshal(val, &cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// PutConfig stages the new head state, advanced atomically alongside the
// rest of a block commit (spec.md §4.8 step 3).
func (b *Batch) PutConfig(cfg model.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return b.pb.Set([]byte(keyConfig), data, nil)
}
