// Package mempool is the pending-transaction store with input
// reservation (spec.md §4.4).
package mempool

import (
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/store"
)

// Mempool wraps internal/store with the reservation semantics spec.md
// §4.4 names: submitting a transaction marks every input it spends with
// the transaction's uid, so a second submission spending the same output
// is rejected before it ever reaches mining.
type Mempool struct {
	store *store.Store
}

// New returns a Mempool backed by s.
func New(s *store.Store) *Mempool {
	return &Mempool{store: s}
}

// Submit reserves tx's inputs and appends it to the mempool in one
// critical section (spec.md §4.4's submit). Fails with
// ledger.ErrDoubleReservation if any input already has a non-sentinel
// spender; no partial reservation is left behind in that case.
func (m *Mempool) Submit(tx model.Transaction) error {
	m.store.Lock()
	defer m.store.Unlock()

	for _, in := range tx.Inputs {
		current, ok, err := m.store.GetUTXO(in.Uid)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrUnknownInput
		}
		if !current.IsUnspent() {
			return ledger.ErrDoubleReservation
		}
	}

	b := m.store.NewBatch()
	for _, in := range tx.Inputs {
		if err := m.store.SetSpender(b, in.Uid, tx.Uid); err != nil {
			b.Close()
			return err
		}
	}
	if err := b.PutMempoolTx(tx); err != nil {
		b.Close()
		return err
	}
	return b.Commit()
}

// Drain returns up to limit pending transactions in ascending uid order
// (spec.md §4.4's drain); it does not mutate the mempool. No insertion
// sequence is kept, so a transaction submitted later with a smaller uid
// is drained first.
func (m *Mempool) Drain(limit int) ([]model.Transaction, error) {
	return m.store.DrainMempool(limit)
}

// Remove erases tx's mempool row without releasing its input
// reservations (spec.md §4.4's remove) - callers that need to release
// reservations too go through internal/commit.Engine.ReleaseInputs.
func (m *Mempool) Remove(uid model.Uid) error {
	b := m.store.NewBatch()
	if err := b.RemoveMempoolTx(uid); err != nil {
		b.Close()
		return err
	}
	return b.Commit()
}
