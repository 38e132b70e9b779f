package nodeconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/containerman17/sanchain/internal/model"
)

// ConfigFileName is the on-disk name spec.md §6 gives the per-node config
// mirror: <data_root>/<node_id>/.sanchain-config.json.
const ConfigFileName = ".sanchain-config.json"

// WriteConfigFile rewrites the JSON mirror of cfg in dataDir. The pebble
// config row in internal/store remains the source of truth; this file
// only lets an operator inspect head state, or recover it, without
// opening the store.
func WriteConfigFile(dataDir string, cfg model.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, ConfigFileName), data, 0o644)
}

// ReadConfigFile loads the JSON mirror, if present.
func ReadConfigFile(dataDir string) (model.Config, bool, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Config{}, false, nil
		}
		return model.Config{}, false, err
	}
	var cfg model.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, false, err
	}
	return cfg, true, nil
}
