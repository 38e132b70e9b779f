// Package miner assembles and mines a candidate block: it executes
// verified transactions, appends the block reward, computes the Merkle
// root, and searches for a proof-of-work nonce (spec.md §4.6).
package miner

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/containerman17/sanchain/internal/consts"
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/verify"
)

// difficultyByte is the byte every difficulty-prefix position must equal.
// spec.md's resolved Open Question 1: original_source/sanchain/models/block.py
// builds `proof = b'0' * difficulty` and compares it against the raw hash
// bytes with hash.startswith(proof) - the ASCII character '0' (0x30), not
// a binary zero byte. Two nodes that disagree on this cannot accept each
// other's blocks, so it is pinned here rather than left to a literal 0x00.
const difficultyByte byte = '0'

// Result is everything one mining pass produces: the sealed block plus
// the transactions dropped during execution (spec.md §4.6 step 2).
type Result struct {
	Block   model.Block
	Invalid []InvalidTx
}

// InvalidTx names a dropped transaction and why verification rejected it.
type InvalidTx struct {
	Tx  model.Transaction
	Err error
}

// Mine runs one full mining pass over a drained batch of mempool
// transactions against minerPubKey and cfg, per spec.md §4.6-§4.7.
// Verification runs concurrently across a bounded verify.Pool; execution
// then replays the original order sequentially, since minting output
// uids and stamping the transaction hash must happen in a fixed sequence.
// ctx cancellation is checked before execution starts and, during the
// proof-of-work search, once every consts.MinerCancelCheckEvery attempts
// rather than after each one; a cancelled mine returns ledger.ErrCancelled and
// leaves no partial state (spec.md §5's cancellation contract).
func Mine(ctx context.Context, drained []model.Transaction, minerPubKey model.PubKey, cfg model.Config, set verify.UTXOSource, minter ledger.Minter) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, ledger.ErrCancelled
	}

	items := make([]verify.TxAndConfig, len(drained))
	for i, tx := range drained {
		items[i] = verify.TxAndConfig{Tx: tx, Config: cfg}
	}
	pool := verify.NewPool(consts.VerifierPoolWidth)
	verdicts := verify.VerifyBatch(ctx, pool, items, set)

	var executed []model.Transaction
	var invalid []InvalidTx
	for i, tx := range drained {
		if err := verdicts[i]; err != nil {
			invalid = append(invalid, InvalidTx{Tx: tx, Err: err})
			continue
		}
		out, err := ledger.Execute(tx, minerPubKey, cfg, minter)
		if err != nil {
			return Result{}, err
		}
		executed = append(executed, out)
	}

	rewardUid, err := minter.Next()
	if err != nil {
		return Result{}, err
	}
	reward := ledger.NewBlockReward(rewardUid, minerPubKey, cfg)
	reward, err = ledger.ExecuteReward(reward, minerPubKey, cfg, minter)
	if err != nil {
		return Result{}, err
	}
	executed = append(executed, reward)

	leaves := make([]model.Hash, len(executed))
	for i, tx := range executed {
		leaves[i] = tx.Hash
	}

	blk := model.Block{
		Index:        uint64(cfg.LastBlockIndex + 1),
		Timestamp:    uint64(time.Now().Unix()),
		MerkleRoot:   MerkleRoot(leaves),
		Transactions: executed,
		Config:       cfg,
	}

	sealed, err := search(ctx, blk, cfg.Difficulty)
	if err != nil {
		return Result{}, err
	}

	return Result{Block: sealed, Invalid: invalid}, nil
}

// search performs the proof-of-work nonce search (spec.md §4.6 step 5):
// starting at a uniformly random nonce, serialize the block without its
// hash/nonce fields, append the little-endian nonce, hash, and accept
// when the hash's first `difficulty` bytes are all difficultyByte.
func search(ctx context.Context, blk model.Block, difficulty int64) (model.Block, error) {
	signable, err := blk.Signable()
	if err != nil {
		return model.Block{}, err
	}

	nonce := uint64(rand.Int63n(consts.MinerNonceUpperBound))
	attempts := 0
	for {
		attempts++
		if attempts%consts.MinerCancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return model.Block{}, ledger.ErrCancelled
			}
		}

		var nonceBytes [8]byte
		binary.LittleEndian.PutUint64(nonceBytes[:], nonce)
		digest := sha256.Sum256(append(append([]byte{}, signable...), nonceBytes[:]...))

		if hasDifficultyPrefix(digest, difficulty) {
			blk.Hash = digest
			blk.Nonce = nonce
			return blk, nil
		}
		nonce++
	}
}

func hasDifficultyPrefix(hash [32]byte, difficulty int64) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > int64(len(hash)) {
		difficulty = int64(len(hash))
	}
	for i := int64(0); i < difficulty; i++ {
		if hash[i] != difficultyByte {
			return false
		}
	}
	return true
}
