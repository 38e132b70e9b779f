package model

import (
	"github.com/containerman17/sanchain/internal/consts"
	"github.com/containerman17/sanchain/internal/money"
)

// Config is the chain's head state (spec.md §3): parameters snapshot plus
// chain-tip metadata, advancing atomically with each committed block.
type Config struct {
	Version             int64        `json:"version"`
	Difficulty          int64        `json:"difficulty"`
	Reward              money.Amount `json:"reward"`
	BlockUTXOUsageLimit int64        `json:"block_utxo_usage_limit"`
	MinerFeesPPM        int64        `json:"miner_fees"`
	BlockHeightLimit    int64        `json:"block_height_limit"`
	LastBlockIndex      int64        `json:"last_block_index"`
	LastBlockHash       Hash         `json:"last_block_hash"`
	Circulation         money.Amount `json:"circulation"`
}

// DefaultConfig returns the initial config for a freshly created node
// (spec.md §6's "Initial/default config").
func DefaultConfig() Config {
	return Config{
		Version:             consts.DefaultVersion,
		Difficulty:          consts.DefaultDifficulty,
		Reward:              money.FromUnits(consts.DefaultRewardUnits),
		BlockUTXOUsageLimit: consts.DefaultBlockUTXOUsageLimit,
		MinerFeesPPM:        consts.DefaultMinerFeesPPM,
		BlockHeightLimit:    consts.DefaultBlockHeightLimit,
		LastBlockIndex:      -1,
		LastBlockHash:       ZeroHash,
		Circulation:         money.Zero,
	}
}
