// Package consts contains all tunable constants in one place
package consts

import "time"

// =============================================================================
// Chain defaults - initial SanchainConfig values for a fresh node
// =============================================================================

const (
	// DefaultVersion is the config schema version written by new nodes
	DefaultVersion = 1

	// DefaultDifficulty is the number of leading '0' bytes required on a block hash
	DefaultDifficulty = 3

	// DefaultRewardUnits is the block reward in base units (100.0 sanch)
	DefaultRewardUnits = 100 * 100_000_000

	// DefaultBlockUTXOUsageLimit caps distinct UTXOs touched per block
	DefaultBlockUTXOUsageLimit = 1000

	// DefaultMinerFeesPPM is the miner fee, in parts-per-million of amount (1%)
	DefaultMinerFeesPPM = 10_000

	// DefaultBlockHeightLimit caps transactions drained from the mempool per block
	DefaultBlockHeightLimit = 100
)

// =============================================================================
// Identifier service
// =============================================================================

const (
	// IDGenRandomMin / IDGenRandomMax bound the 3-digit random suffix appended
	// to the millisecond timestamp when minting a Uid.
	IDGenRandomMin = 100
	IDGenRandomMax = 1000

	// IDGenBackwardsTolerance is how far the wall clock may regress before
	// the generator refuses to mint further ids.
	IDGenBackwardsTolerance = 2 * time.Second
)

// =============================================================================
// Miner - proof of work search
// =============================================================================

const (
	// MinerNonceUpperBound bounds the uniformly-random starting nonce.
	MinerNonceUpperBound = 100_000_000_000_000_000

	// MinerCancelCheckEvery is how many nonce attempts run between
	// cancellation checks - kept small so Cancel is honored promptly.
	MinerCancelCheckEvery = 1024

	// MinerPollInterval is how often the mining runner looks for mempool work.
	MinerPollInterval = 250 * time.Millisecond

	// VerifierPoolWidth bounds how many transactions a mining pass
	// verifies concurrently before executing them in order.
	VerifierPoolWidth = 8
)

// =============================================================================
// Store - pebble key layout
// =============================================================================

const (
	// StoreSyncWrites forces fsync on every committed batch.
	StoreSyncWrites = true
)

// =============================================================================
// API / broadcast - listen addresses and polling
// =============================================================================

const (
	// APIListenAddr is the HTTP API address.
	APIListenAddr = ":9656"

	// MetricsListenAddr is the Prometheus metrics server address.
	MetricsListenAddr = ":9657"

	// BroadcastWriteTimeout bounds a single write to a connected peer.
	BroadcastWriteTimeout = 5 * time.Second

	// BroadcastSendBuffer is the per-client outbound message buffer depth.
	BroadcastSendBuffer = 64
)
