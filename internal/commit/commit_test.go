package commit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
	"github.com/containerman17/sanchain/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "sanchain.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommitInsertsBlockAndAdvancesConfig(t *testing.T) {
	s := openTestStore(t)
	engine := New(s)

	minerOwner := model.Hash{1, 2, 3}
	reward := model.Transaction{
		Kind: model.KindBlockReward,
		Uid:  1,
		Outputs: []model.UTXO{
			{Uid: 100, Owner: minerOwner, Value: money.FromUnits(100 * 100_000_000), Index: 0, SpenderTxUid: model.NoUid},
		},
		Hash: model.Hash{9},
	}
	cfg := model.DefaultConfig()
	blk := model.Block{Index: 0, Hash: model.Hash{8}, Transactions: []model.Transaction{reward}, Config: cfg}

	if err := engine.Commit(context.Background(), blk); err != nil {
		t.Fatal(err)
	}

	gotCfg, err := s.GetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if gotCfg.LastBlockIndex != 0 {
		t.Errorf("expected last_block_index 0, got %d", gotCfg.LastBlockIndex)
	}
	if gotCfg.LastBlockHash != blk.Hash {
		t.Errorf("expected last_block_hash to match committed block")
	}
	if gotCfg.Circulation != money.FromUnits(100*100_000_000) {
		t.Errorf("expected circulation to include reward, got %s", gotCfg.Circulation)
	}

	utxo, ok, err := s.GetUTXO(100)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || utxo.Owner != minerOwner {
		t.Errorf("expected the reward output present and owned by the miner")
	}
}

func TestCommitDeletesSpentInputsAndInsertsOutputs(t *testing.T) {
	s := openTestStore(t)
	engine := New(s)

	owner := model.Hash{1}
	input := model.UTXO{Uid: 1, Owner: owner, Value: money.FromUnits(500), SpenderTxUid: 2}
	b := s.NewBatch()
	if err := b.InsertUTXO(input); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	tx := model.Transaction{
		Kind:   model.KindTransaction,
		Uid:    2,
		Inputs: []model.UTXO{input},
		Outputs: []model.UTXO{
			{Uid: 3, Owner: model.Hash{2}, Value: money.FromUnits(500), SpenderTxUid: model.NoUid},
		},
		Hash: model.Hash{7},
	}
	cfg := model.DefaultConfig()
	blk := model.Block{Index: 0, Hash: model.Hash{6}, Transactions: []model.Transaction{tx}, Config: cfg}

	if err := engine.Commit(context.Background(), blk); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := s.GetUTXO(1); err != nil || ok {
		t.Errorf("expected spent input deleted, ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.GetUTXO(3); err != nil || !ok {
		t.Errorf("expected nascent output inserted, ok=%v err=%v", ok, err)
	}
}

func TestReleaseInputsUnreservesAndRemovesFromMempool(t *testing.T) {
	s := openTestStore(t)
	engine := New(s)

	input := model.UTXO{Uid: 1, Owner: model.Hash{1}, Value: money.FromUnits(100), SpenderTxUid: 2}
	b := s.NewBatch()
	if err := b.InsertUTXO(input); err != nil {
		t.Fatal(err)
	}
	tx := model.Transaction{Kind: model.KindTransaction, Uid: 2, Inputs: []model.UTXO{input}}
	if err := b.PutMempoolTx(tx); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := engine.ReleaseInputs(tx); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetUTXO(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got.SpenderTxUid != model.NoUid {
		t.Errorf("expected reservation released, got %+v", got)
	}

	_, ok, err = s.GetMempoolTx(2)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("expected mempool row removed")
	}
}
