package verify

import (
	"context"
	"crypto/rsa"
	"testing"

	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
)

type memSet map[model.Uid]model.UTXO

func (m memSet) Get(uid model.Uid) (model.UTXO, bool, error) {
	u, ok := m[uid]
	return u, ok, nil
}

type rsaKey struct {
	priv *rsa.PrivateKey
	der  model.PubKey
}

func newRSAKey(t *testing.T) *rsaKey {
	t.Helper()
	priv, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	return &rsaKey{priv: priv, der: crypto.DER(&priv.PublicKey)}
}

func signedTransfer(t *testing.T, sender *rsaKey, receiverDER model.PubKey, input model.UTXO, amount money.Amount) model.Transaction {
	t.Helper()
	tx := model.Transaction{
		Kind:     model.KindTransaction,
		Uid:      1,
		Sender:   sender.der,
		Receiver: receiverDER,
		Amount:   amount,
		Inputs:   []model.UTXO{input},
	}
	signable, err := tx.Signable()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := crypto.Sign(sender.priv, signable)
	if err != nil {
		t.Fatal(err)
	}
	tx.Signature = sig
	return tx
}

func TestVerifyAcceptsWellFormedTransaction(t *testing.T) {
	sender := newRSAKey(t)
	receiver := newRSAKey(t)

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(sender.der), Value: money.FromUnits(1000), SpenderTxUid: model.NoUid}
	cfg := model.DefaultConfig()
	tx := signedTransfer(t, sender, receiver.der, input, money.FromUnits(400))

	set := memSet{1: input}
	if err := Verify(tx, cfg, set); err != nil {
		t.Errorf("expected valid transaction to pass, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	sender := newRSAKey(t)
	receiver := newRSAKey(t)

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(sender.der), Value: money.FromUnits(1000), SpenderTxUid: model.NoUid}
	cfg := model.DefaultConfig()
	tx := signedTransfer(t, sender, receiver.der, input, money.FromUnits(400))
	tx.Signature[0] ^= 0xFF

	set := memSet{1: input}
	if err := Verify(tx, cfg, set); err != ledger.ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyRejectsInsufficientFunds(t *testing.T) {
	sender := newRSAKey(t)
	receiver := newRSAKey(t)

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(sender.der), Value: money.FromUnits(100), SpenderTxUid: model.NoUid}
	cfg := model.DefaultConfig()
	tx := signedTransfer(t, sender, receiver.der, input, money.FromUnits(400))

	set := memSet{1: input}
	if err := Verify(tx, cfg, set); err != ledger.ErrInsufficientFunds {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestVerifyRejectsUnknownInput(t *testing.T) {
	sender := newRSAKey(t)
	receiver := newRSAKey(t)

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(sender.der), Value: money.FromUnits(1000), SpenderTxUid: model.NoUid}
	cfg := model.DefaultConfig()
	tx := signedTransfer(t, sender, receiver.der, input, money.FromUnits(400))

	set := memSet{} // input missing from the set entirely
	if err := Verify(tx, cfg, set); err != ledger.ErrUnknownInput {
		t.Errorf("expected ErrUnknownInput, got %v", err)
	}
}

func TestVerifyIgnoresSpenderWhenBackTracing(t *testing.T) {
	sender := newRSAKey(t)
	receiver := newRSAKey(t)

	input := model.UTXO{Uid: 1, Owner: crypto.Hash(sender.der), Value: money.FromUnits(1000), SpenderTxUid: model.NoUid}
	cfg := model.DefaultConfig()
	tx := signedTransfer(t, sender, receiver.der, input, money.FromUnits(400))

	reserved := input
	reserved.SpenderTxUid = tx.Uid
	set := memSet{1: reserved}

	if err := Verify(tx, cfg, set); err != nil {
		t.Errorf("expected reservation not to affect back-trace, got %v", err)
	}
}

func TestVerifyRewardTransaction(t *testing.T) {
	miner := newRSAKey(t)
	cfg := model.DefaultConfig()
	reward := ledger.NewBlockReward(1, miner.der, cfg)

	if err := Verify(reward, cfg, memSet{}); err != nil {
		t.Errorf("expected well-formed reward to pass, got %v", err)
	}
}

func TestVerifyBatchRunsConcurrently(t *testing.T) {
	sender := newRSAKey(t)
	receiver := newRSAKey(t)
	cfg := model.DefaultConfig()

	set := memSet{}
	items := make([]TxAndConfig, 0, 5)
	for i := 0; i < 5; i++ {
		input := model.UTXO{Uid: model.Uid(i + 1), Owner: crypto.Hash(sender.der), Value: money.FromUnits(1000), SpenderTxUid: model.NoUid}
		set[input.Uid] = input
		tx := signedTransfer(t, sender, receiver.der, input, money.FromUnits(10))
		tx.Uid = model.Uid(i + 1)
		signable, err := tx.Signable()
		if err != nil {
			t.Fatal(err)
		}
		if tx.Signature, err = crypto.Sign(sender.priv, signable); err != nil {
			t.Fatal(err)
		}
		items = append(items, TxAndConfig{Tx: tx, Config: cfg})
	}

	pool := NewPool(2)
	results := VerifyBatch(context.Background(), pool, items, set)
	for i, err := range results {
		if err != nil {
			t.Errorf("item %d: expected valid, got %v", i, err)
		}
	}
}
