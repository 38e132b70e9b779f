package ledger

import (
	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/model"
)

// RewardSenderHash is the verification key (SHA-256 of the DER public
// key) of the protocol's reward identity (spec.md §6). A BlockReward
// transaction carries the DER public key itself as its sender, and the
// verifier compares that key bytewise.
func RewardSenderHash() model.Hash {
	return crypto.VerificationKey(crypto.RewardSenderPublicKey())
}

// NewBlockReward builds the unexecuted BlockReward transaction the miner
// appends to every candidate block (spec.md §4.6 step 3): a zero-input
// transaction whose sole output pays config.Reward to the miner.
func NewBlockReward(uid model.Uid, minerPubKey model.PubKey, cfg model.Config) model.Transaction {
	return model.Transaction{
		Kind:     model.KindBlockReward,
		Uid:      uid,
		Sender:   crypto.DER(crypto.RewardSenderPublicKey()),
		Receiver: minerPubKey,
		Amount:   cfg.Reward,
	}
}
