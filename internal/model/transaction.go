package model

import "github.com/containerman17/sanchain/internal/money"

// Kind discriminates a Transaction between a regular transfer and the
// block reward that mints value to the miner. Design Notes' "dynamic
// polymorphism between Transaction and BlockReward" is replaced by this
// tagged variant over one struct rather than a subclass.
type Kind string

const (
	KindTransaction Kind = "Transaction"
	KindBlockReward Kind = "BlockReward"
)

// Transaction is either a regular value transfer or a BlockReward (spec.md
// §3). Field order matches spec.md §6's Transaction table plus the input
// and output UTXO lists carried alongside the stored columns.
type Transaction struct {
	Kind       Kind         `json:"type"`
	Uid        Uid          `json:"uid"`
	Sender     PubKey       `json:"sender"`
	Receiver   PubKey       `json:"receiver"`
	Amount     money.Amount `json:"amount"`
	Inputs     []UTXO       `json:"inputs"`
	Signature  []byte       `json:"signature"`
	Outputs    []UTXO       `json:"outputs"`
	Hash       Hash         `json:"hash"`
	BlockIndex int64        `json:"block_index"`
}

// IsReward reports whether this is the block reward transaction.
func (t Transaction) IsReward() bool { return t.Kind == KindBlockReward }

// signableTransaction is the signable form spec.md §4.2 describes: the
// full transaction with signature, outputs, hash and block_index removed,
// and each input UTXO stripped of its spender_tx_uid.
type signableTransaction struct {
	Kind     Kind           `json:"type"`
	Uid      Uid            `json:"uid"`
	Sender   PubKey         `json:"sender"`
	Receiver PubKey         `json:"receiver"`
	Amount   money.Amount   `json:"amount"`
	Inputs   []signableUTXO `json:"inputs"`
}

// Signable returns the canonical bytes that are signed by the sender and
// checked by the verifier - identical for both operations by construction.
func (t Transaction) Signable() ([]byte, error) {
	inputs := make([]signableUTXO, len(t.Inputs))
	for i, u := range t.Inputs {
		inputs[i] = u.signable()
	}
	s := signableTransaction{
		Kind:     t.Kind,
		Uid:      t.Uid,
		Sender:   t.Sender,
		Receiver: t.Receiver,
		Amount:   t.Amount,
		Inputs:   inputs,
	}
	return canonicalMarshal(s)
}

// CanonicalBytes returns the full canonical encoding of the transaction,
// used to compute its Hash once it has been sealed (spec.md §4.7).
func (t Transaction) CanonicalBytes() ([]byte, error) {
	return canonicalMarshal(t)
}
