// Package utxoset is the indexed view over unspent transaction outputs
// spec.md §4.3 names, backed by internal/store's primary and secondary
// key spaces.
package utxoset

import (
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
	"github.com/containerman17/sanchain/internal/store"
)

// UTXOSet is a thin, named facade over *store.Store exposing exactly the
// operations spec.md §4.3 lists, so callers (verifier, API handlers)
// depend on this vocabulary rather than the store's broader surface.
type UTXOSet struct {
	store *store.Store
}

// New returns a UTXOSet backed by s.
func New(s *store.Store) *UTXOSet {
	return &UTXOSet{store: s}
}

// Get returns the output with uid, or ok=false if it does not exist.
func (u *UTXOSet) Get(uid model.Uid) (model.UTXO, bool, error) {
	return u.store.GetUTXO(uid)
}

// ByOwner returns every output owned by owner, optionally restricted to
// unspent ones.
func (u *UTXOSet) ByOwner(owner model.Hash, unusedOnly bool) ([]model.UTXO, error) {
	return u.store.ByOwner(owner, unusedOnly)
}

// ByProducingTx returns every output produced by the transaction with hash.
func (u *UTXOSet) ByProducingTx(hash model.Hash) ([]model.UTXO, error) {
	return u.store.ByProducingTx(hash)
}

// Insert stages a new output within batch b.
func (u *UTXOSet) Insert(b *store.Batch, utxo model.UTXO) error {
	return b.InsertUTXO(utxo)
}

// Delete stages removal of uid's row within batch b.
func (u *UTXOSet) Delete(b *store.Batch, uid model.Uid) error {
	return u.store.DeleteUTXO(b, uid)
}

// SetSpender stages a reservation or release of uid's spender within
// batch b.
func (u *UTXOSet) SetSpender(b *store.Batch, uid, spender model.Uid) error {
	return u.store.SetSpender(b, uid, spender)
}

// Balance sums the value of every unspent output owned by owner - the
// wallet-balance query SPEC_FULL.md's supplemented features surface at
// GET /balance/{owner}.
func (u *UTXOSet) Balance(owner model.Hash) (money.Amount, error) {
	outputs, err := u.ByOwner(owner, true)
	if err != nil {
		return 0, err
	}
	var total money.Amount
	for _, o := range outputs {
		total = total.Add(o.Value)
	}
	return total, nil
}
