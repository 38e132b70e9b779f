// Package commit applies a mined block to the canonical store as one
// atomic unit (spec.md §4.8), and releases mempool reservations for
// transactions the miner dropped.
package commit

import (
	"context"
	"fmt"

	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/store"
)

// Engine applies committed blocks and releases abandoned reservations.
// It is the only writer of blocks, committed-transaction rows, UTXO
// deletions/insertions and config advancement - every write goes through
// one of its two entry points so the store's single-writer section
// (Store.Lock/Unlock) always covers a complete logical operation.
type Engine struct {
	store *store.Store
}

// New returns a commit Engine backed by s.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Commit durably applies blk: insert the block row, insert each
// transaction, delete every spent input, insert every nascent output,
// advance the config, and clear the mempool rows for the block's
// transactions - all in one pebble.Batch (spec.md §4.8). On any failure
// the batch is discarded and ledger.ErrCommitFailed is returned; the
// store observes no change (pebble only applies a batch atomically on a
// successful Commit, so a discarded batch never touches durable state).
func (e *Engine) Commit(ctx context.Context, blk model.Block) error {
	if err := ctx.Err(); err != nil {
		return ledger.ErrCancelled
	}

	e.store.Lock()
	defer e.store.Unlock()

	b := e.store.NewBatch()
	if err := e.applyBlock(b, blk); err != nil {
		b.Close()
		return fmt.Errorf("%w: %v", ledger.ErrCommitFailed, err)
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrCommitFailed, err)
	}
	return nil
}

func (e *Engine) applyBlock(b *store.Batch, blk model.Block) error {
	if err := b.PutBlock(blk); err != nil {
		return err
	}

	cfg := blk.Config
	cfg.LastBlockIndex = int64(blk.Index)
	cfg.LastBlockHash = blk.Hash

	for _, tx := range blk.Transactions {
		if err := b.PutTransaction(tx); err != nil {
			return err
		}
		for _, in := range tx.Inputs {
			if err := e.store.DeleteUTXO(b, in.Uid); err != nil {
				return err
			}
		}
		for _, out := range tx.Outputs {
			if err := b.InsertUTXO(out); err != nil {
				return err
			}
		}
		if err := b.RemoveMempoolTx(tx.Uid); err != nil {
			return err
		}
		if tx.IsReward() && len(tx.Outputs) == 1 {
			cfg.Circulation = cfg.Circulation.Add(tx.Outputs[0].Value)
		}
	}

	return b.PutConfig(cfg)
}

// ReleaseInputs undoes a rejected transaction's input reservations
// (spec.md §4.4's release_inputs) and removes its mempool row in the same
// batch - the "Dropped" transition in spec.md §4's transaction lifecycle.
func (e *Engine) ReleaseInputs(tx model.Transaction) error {
	e.store.Lock()
	defer e.store.Unlock()

	b := e.store.NewBatch()
	for _, in := range tx.Inputs {
		if err := e.store.SetSpender(b, in.Uid, model.NoUid); err != nil {
			b.Close()
			return err
		}
	}
	if err := b.RemoveMempoolTx(tx.Uid); err != nil {
		b.Close()
		return err
	}
	return b.Commit()
}
