package ledger

import (
	"testing"

	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
)

type sequentialMinter struct{ next model.Uid }

func (m *sequentialMinter) Next() (model.Uid, error) {
	m.next++
	return m.next, nil
}

func TestExecuteConservesValueWithChange(t *testing.T) {
	senderPriv, _ := crypto.GenerateKeypair()
	receiverPriv, _ := crypto.GenerateKeypair()
	minerPriv, _ := crypto.GenerateKeypair()

	senderDER := crypto.DER(&senderPriv.PublicKey)
	receiverDER := crypto.DER(&receiverPriv.PublicKey)
	minerDER := crypto.DER(&minerPriv.PublicKey)

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(senderDER), Value: money.FromUnits(1000), SpenderTxUid: model.NoUid}
	tx := model.Transaction{
		Kind:     model.KindTransaction,
		Uid:      100,
		Sender:   senderDER,
		Receiver: receiverDER,
		Amount:   money.FromUnits(400),
		Inputs:   []model.UTXO{input},
	}
	cfg := model.DefaultConfig()
	cfg.MinerFeesPPM = 10_000 // 1%

	executed, err := Execute(tx, minerDER, cfg, &sequentialMinter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(executed.Outputs) != 3 {
		t.Fatalf("expected fee+receiver+change outputs, got %d", len(executed.Outputs))
	}

	var total money.Amount
	for _, o := range executed.Outputs {
		total = total.Add(o.Value)
		if o.ProducingTxHash != executed.Hash {
			t.Errorf("output producing_tx_hash not stamped to tx hash")
		}
	}
	if total != input.Value {
		t.Errorf("value not conserved: outputs sum %s, input %s", total, input.Value)
	}

	if executed.Outputs[0].Index != 0 || executed.Outputs[1].Index != 1 || executed.Outputs[2].Index != 2 {
		t.Errorf("expected fee=0, receiver=1, change=2 ordering")
	}
}

func TestExecuteOmitsChangeWhenExact(t *testing.T) {
	senderPriv, _ := crypto.GenerateKeypair()
	receiverPriv, _ := crypto.GenerateKeypair()
	minerPriv, _ := crypto.GenerateKeypair()

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(crypto.DER(&senderPriv.PublicKey)), Value: money.FromUnits(400), SpenderTxUid: model.NoUid}
	tx := model.Transaction{
		Kind:     model.KindTransaction,
		Uid:      100,
		Sender:   crypto.DER(&senderPriv.PublicKey),
		Receiver: crypto.DER(&receiverPriv.PublicKey),
		Amount:   money.FromUnits(400),
		Inputs:   []model.UTXO{input},
	}
	cfg := model.DefaultConfig()
	cfg.MinerFeesPPM = 0

	executed, err := Execute(tx, crypto.DER(&minerPriv.PublicKey), cfg, &sequentialMinter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(executed.Outputs) != 2 {
		t.Fatalf("expected only fee+receiver outputs when change is zero, got %d", len(executed.Outputs))
	}
}

func TestExecuteRewardSingleOutput(t *testing.T) {
	minerPriv, _ := crypto.GenerateKeypair()
	cfg := model.DefaultConfig()
	reward := NewBlockReward(1, crypto.DER(&minerPriv.PublicKey), cfg)

	executed, err := ExecuteReward(reward, crypto.DER(&minerPriv.PublicKey), cfg, &sequentialMinter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(executed.Outputs) != 1 {
		t.Fatalf("expected exactly one reward output, got %d", len(executed.Outputs))
	}
	if executed.Outputs[0].Value != cfg.Reward {
		t.Errorf("expected reward output value %s, got %s", cfg.Reward, executed.Outputs[0].Value)
	}
}
