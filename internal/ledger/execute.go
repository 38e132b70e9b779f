package ledger

import (
	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
)

// Minter mints the Uid each nascent output needs at creation (spec.md §3:
// "uid ... assigned at creation"). internal/idgen.Generator and
// internal/idgen.PersistentGenerator both satisfy this.
type Minter interface {
	Next() (model.Uid, error)
}

// Execute runs a verified, non-reward transaction (spec.md §4.7),
// producing its nascent outputs in the fixed order (fee, receiver,
// change) and stamping its hash. Change is whatever the inputs hold beyond
// amount plus fee, so the outputs sum to the inputs. Callers must only pass transactions
// that already hold verify.Verify(tx, cfg, utxoSet) == nil.
func Execute(tx model.Transaction, minerPubKey model.PubKey, cfg model.Config, minter Minter) (model.Transaction, error) {
	tx.BlockIndex = cfg.LastBlockIndex + 1

	var inputAmount money.Amount
	for _, u := range tx.Inputs {
		inputAmount = inputAmount.Add(u.Value)
	}

	outputs := make([]model.UTXO, 0, 3)

	feeUid, err := minter.Next()
	if err != nil {
		return model.Transaction{}, err
	}
	outputs = append(outputs, model.NascentUTXO(crypto.Hash(minerPubKey), tx.Amount.Fee(cfg.MinerFeesPPM), 0))
	outputs[len(outputs)-1].Uid = feeUid

	receiverUid, err := minter.Next()
	if err != nil {
		return model.Transaction{}, err
	}
	outputs = append(outputs, model.NascentUTXO(crypto.Hash(tx.Receiver), tx.Amount, 1))
	outputs[len(outputs)-1].Uid = receiverUid

	if change := inputAmount.Sub(tx.Amount).Sub(tx.Amount.Fee(cfg.MinerFeesPPM)); change.IsPositive() {
		changeUid, err := minter.Next()
		if err != nil {
			return model.Transaction{}, err
		}
		outputs = append(outputs, model.NascentUTXO(crypto.Hash(tx.Sender), change, 2))
		outputs[len(outputs)-1].Uid = changeUid
	}

	for i := range outputs {
		outputs[i].ProducingBlockIndex = tx.BlockIndex
	}
	tx.Outputs = outputs

	hashBytes, err := tx.CanonicalBytes()
	if err != nil {
		return model.Transaction{}, err
	}
	tx.Hash = crypto.Hash(hashBytes)
	for i := range tx.Outputs {
		tx.Outputs[i].ProducingTxHash = tx.Hash
	}

	return tx, nil
}

// ExecuteReward runs the zero-input BlockReward transaction (spec.md
// §4.7's final paragraph): one output of config.Reward to the miner, no
// fee output.
func ExecuteReward(tx model.Transaction, minerPubKey model.PubKey, cfg model.Config, minter Minter) (model.Transaction, error) {
	tx.BlockIndex = cfg.LastBlockIndex + 1

	outputUid, err := minter.Next()
	if err != nil {
		return model.Transaction{}, err
	}
	output := model.NascentUTXO(crypto.Hash(minerPubKey), cfg.Reward, 0)
	output.Uid = outputUid
	output.ProducingBlockIndex = tx.BlockIndex
	tx.Outputs = []model.UTXO{output}

	hashBytes, err := tx.CanonicalBytes()
	if err != nil {
		return model.Transaction{}, err
	}
	tx.Hash = crypto.Hash(hashBytes)
	tx.Outputs[0].ProducingTxHash = tx.Hash

	return tx, nil
}
