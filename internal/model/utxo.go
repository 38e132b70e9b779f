package model

import "github.com/containerman17/sanchain/internal/money"

// UTXO is an unspent transaction output (spec.md §3). Field order matches
// the canonical column order in spec.md §6's UTXO table.
type UTXO struct {
	Uid                 Uid          `json:"uid"`
	Owner               Hash         `json:"owner"`
	Value               money.Amount `json:"value"`
	Index               uint32       `json:"index"`
	ProducingTxHash     Hash         `json:"producing_tx_hash"`
	ProducingBlockIndex int64        `json:"producing_block_index"`
	SpenderTxUid        Uid          `json:"spender_tx_uid"`
}

// NascentUTXO constructs an output with no uid, no producing tx hash yet
// (stamped once the enclosing transaction is hashed) and an unassigned
// spender - the "nascent" lifecycle stage described in the GLOSSARY.
func NascentUTXO(owner Hash, value money.Amount, index uint32) UTXO {
	return UTXO{
		Owner:        owner,
		Value:        value,
		Index:        index,
		SpenderTxUid: NoUid,
	}
}

// IsUnspent reports whether the output has not yet been reserved or spent.
func (u UTXO) IsUnspent() bool { return u.SpenderTxUid == NoUid }

// EqualIgnoringSpender reports whether u and other describe the same
// output, disregarding spender_tx_uid - the comparison the verifier uses
// to back-trace an input (spec.md §4.5 check 3): a transaction carries
// its input as captured at submission time, before reservation stamped
// the store's copy with a spender.
func (u UTXO) EqualIgnoringSpender(other UTXO) bool {
	return u.signable() == other.signable()
}

// signableUTXO is the signable form of a UTXO - the same fields, minus
// spender_tx_uid, which spec.md §4.2 says is removed from each input UTXO
// before a transaction is signed or its signature verified.
type signableUTXO struct {
	Uid                 Uid          `json:"uid"`
	Owner               Hash         `json:"owner"`
	Value               money.Amount `json:"value"`
	Index               uint32       `json:"index"`
	ProducingTxHash     Hash         `json:"producing_tx_hash"`
	ProducingBlockIndex int64        `json:"producing_block_index"`
}

func (u UTXO) signable() signableUTXO {
	return signableUTXO{
		Uid:                 u.Uid,
		Owner:               u.Owner,
		Value:               u.Value,
		Index:               u.Index,
		ProducingTxHash:     u.ProducingTxHash,
		ProducingBlockIndex: u.ProducingBlockIndex,
	}
}
