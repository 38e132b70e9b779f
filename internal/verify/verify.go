// Package verify checks a transaction's signature, ownership, balance
// and positivity (spec.md §4.5) with no side effects on the store.
package verify

import (
	"bytes"

	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
)

// UTXOSource resolves input UTXOs by uid - internal/utxoset.UTXOSet and
// internal/store.Store both satisfy it (GetUTXO has the same shape).
type UTXOSource interface {
	Get(uid model.Uid) (model.UTXO, bool, error)
}

// Verify runs the five checks spec.md §4.5 lists, in the order given
// there, returning the first failing sentinel error from the
// internal/ledger taxonomy, or nil if tx is valid against cfg and set.
//
// A BlockReward transaction bypasses signature and balance checks per
// the Design Notes: its sender must equal the protocol reward identity,
// its amount must equal cfg.Reward, and once executed it must have a
// single output worth cfg.Reward.
func Verify(tx model.Transaction, cfg model.Config, set UTXOSource) error {
	if tx.IsReward() {
		return verifyReward(tx, cfg)
	}

	signable, err := tx.Signable()
	if err != nil {
		return err
	}
	senderKey, err := crypto.ParseDER(tx.Sender)
	if err != nil {
		return ledger.ErrInvalidSignature
	}
	if err := crypto.Verify(senderKey, signable, tx.Signature); err != nil {
		return ledger.ErrInvalidSignature
	}

	senderOwner := crypto.Hash(tx.Sender)
	var inputAmount money.Amount
	for _, in := range tx.Inputs {
		if in.Owner != senderOwner {
			return ledger.ErrInvalidSignature
		}
		stored, ok, err := set.Get(in.Uid)
		if err != nil {
			return err
		}
		if !ok || !stored.EqualIgnoringSpender(in) {
			return ledger.ErrUnknownInput
		}
		inputAmount = inputAmount.Add(in.Value)
	}

	required := tx.Amount.Add(tx.Amount.Fee(cfg.MinerFeesPPM))
	if inputAmount.Cmp(required) < 0 {
		return ledger.ErrInsufficientFunds
	}

	if !tx.Amount.IsPositive() {
		return ledger.ErrNonPositiveAmount
	}

	return nil
}

func verifyReward(tx model.Transaction, cfg model.Config) error {
	if !bytes.Equal(tx.Sender, crypto.DER(crypto.RewardSenderPublicKey())) {
		return ledger.ErrInvalidSignature
	}
	if tx.Amount != cfg.Reward {
		return ledger.ErrInsufficientFunds
	}
	if len(tx.Outputs) > 0 && (len(tx.Outputs) != 1 || tx.Outputs[0].Value != cfg.Reward) {
		return ledger.ErrInsufficientFunds
	}
	return nil
}
