package verify

import (
	"context"

	"github.com/containerman17/sanchain/internal/model"
)

// Pool bounds how many verifications run concurrently, adapted from
// evm-ingestion/rpc/controller.go's semaphore Acquire/Release/Execute -
// verification here is local and CPU-bound rather than an RPC call, so
// the adaptive P95-latency auto-tuning the teacher's Controller performs
// is dropped; only the fixed-width semaphore shape is kept.
type Pool struct {
	semaphore chan struct{}
}

// NewPool returns a Pool allowing up to width concurrent Execute calls.
func NewPool(width int) *Pool {
	if width < 1 {
		width = 1
	}
	return &Pool{semaphore: make(chan struct{}, width)}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	<-p.semaphore
}

// Execute runs fn bounded by the pool's width.
func (p *Pool) Execute(ctx context.Context, fn func() error) error {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()
	return fn()
}

// VerifyBatch verifies every transaction in txs concurrently, bounded by
// pool's width, returning the verification outcome for each in the
// original order of txs.
func VerifyBatch(ctx context.Context, pool *Pool, txs []TxAndConfig, set UTXOSource) []error {
	results := make([]error, len(txs))
	done := make(chan int, len(txs))

	for i, tc := range txs {
		i, tc := i, tc
		go func() {
			results[i] = pool.Execute(ctx, func() error {
				return Verify(tc.Tx, tc.Config, set)
			})
			done <- i
		}()
	}
	for range txs {
		<-done
	}
	return results
}

// TxAndConfig pairs a transaction with the config snapshot it is verified
// against - every transaction in one mining pass shares the same config,
// but VerifyBatch takes it per-item so callers never need to zip results
// back up by hand.
type TxAndConfig struct {
	Tx     model.Transaction
	Config model.Config
}
