package store

import (
	"path/filepath"
	"testing"

	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sanchain.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConfigDefaultsWhenAbsent(t *testing.T) {
	s := openTestStore(t)
	cfg, err := s.GetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != model.DefaultConfig() {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	cfg := model.DefaultConfig()
	cfg.LastBlockIndex = 5
	cfg.Circulation = money.FromUnits(12345)

	b := s.NewBatch()
	if err := b.PutConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("config round trip mismatch: got %+v, want %+v", got, cfg)
	}
}

func TestUTXOInsertGetDelete(t *testing.T) {
	s := openTestStore(t)
	owner := model.Hash{1, 2, 3}
	u := model.UTXO{
		Uid:             100,
		Owner:           owner,
		Value:           money.FromUnits(500),
		Index:           0,
		ProducingTxHash: model.Hash{9, 9, 9},
		SpenderTxUid:    model.NoUid,
	}

	b := s.NewBatch()
	if err := b.InsertUTXO(u); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetUTXO(100)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != u {
		t.Fatalf("expected inserted utxo back, got %+v ok=%v", got, ok)
	}

	byOwner, err := s.ByOwner(owner, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(byOwner) != 1 || byOwner[0] != u {
		t.Errorf("ByOwner mismatch: %+v", byOwner)
	}

	byPTx, err := s.ByProducingTx(u.ProducingTxHash)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPTx) != 1 || byPTx[0] != u {
		t.Errorf("ByProducingTx mismatch: %+v", byPTx)
	}

	db := s.NewBatch()
	if err := s.DeleteUTXO(db, 100); err != nil {
		t.Fatal(err)
	}
	if err := db.Commit(); err != nil {
		t.Fatal(err)
	}

	_, ok, err = s.GetUTXO(100)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("expected utxo deleted")
	}
}

func TestByOwnerUnusedOnlyFiltersSpent(t *testing.T) {
	s := openTestStore(t)
	owner := model.Hash{7}
	unspent := model.UTXO{Uid: 1, Owner: owner, Value: money.FromUnits(1), SpenderTxUid: model.NoUid}
	spent := model.UTXO{Uid: 2, Owner: owner, Value: money.FromUnits(1), SpenderTxUid: 999}

	b := s.NewBatch()
	if err := b.InsertUTXO(unspent); err != nil {
		t.Fatal(err)
	}
	if err := b.InsertUTXO(spent); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	all, err := s.ByOwner(owner, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(all))
	}

	unused, err := s.ByOwner(owner, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(unused) != 1 || unused[0].Uid != 1 {
		t.Errorf("expected only the unspent output, got %+v", unused)
	}
}

func TestSetSpenderReserves(t *testing.T) {
	s := openTestStore(t)
	u := model.UTXO{Uid: 1, Owner: model.Hash{1}, Value: money.FromUnits(1), SpenderTxUid: model.NoUid}
	b := s.NewBatch()
	if err := b.InsertUTXO(u); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	sb := s.NewBatch()
	if err := s.SetSpender(sb, 1, 42); err != nil {
		t.Fatal(err)
	}
	if err := sb.Commit(); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetUTXO(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got.SpenderTxUid != 42 {
		t.Errorf("expected spender 42, got %+v", got)
	}
}

func TestMempoolDrainOrderAndRemove(t *testing.T) {
	s := openTestStore(t)
	txs := []model.Transaction{
		{Kind: model.KindTransaction, Uid: 10},
		{Kind: model.KindTransaction, Uid: 20},
		{Kind: model.KindTransaction, Uid: 30},
	}
	b := s.NewBatch()
	for _, tx := range txs {
		if err := b.PutMempoolTx(tx); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	drained, err := s.DrainMempool(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(drained) != 2 || drained[0].Uid != 10 || drained[1].Uid != 20 {
		t.Fatalf("unexpected drain order: %+v", drained)
	}

	rb := s.NewBatch()
	if err := rb.RemoveMempoolTx(10); err != nil {
		t.Fatal(err)
	}
	if err := rb.Commit(); err != nil {
		t.Fatal(err)
	}

	all, err := s.DrainMempool(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(all))
	}
}

func TestBlockInsertAndLatestIndex(t *testing.T) {
	s := openTestStore(t)
	if idx, err := s.LatestBlockIndex(); err != nil || idx != -1 {
		t.Fatalf("expected -1 for empty chain, got %d err=%v", idx, err)
	}

	blk := model.Block{Index: 0, Config: model.DefaultConfig()}
	b := s.NewBatch()
	if err := b.PutBlock(blk); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	idx, err := s.LatestBlockIndex()
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Errorf("expected latest index 0, got %d", idx)
	}

	got, ok, err := s.GetBlock(0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got.Index != 0 {
		t.Errorf("expected block 0 back, got %+v ok=%v", got, ok)
	}
}

func TestWatermarkRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if last, err := s.LastUid(); err != nil || last != model.NoUid {
		t.Fatalf("expected NoUid for fresh store, got %d err=%v", last, err)
	}
	if err := s.SaveLastUid(555); err != nil {
		t.Fatal(err)
	}
	last, err := s.LastUid()
	if err != nil {
		t.Fatal(err)
	}
	if last != 555 {
		t.Errorf("expected watermark 555, got %d", last)
	}
}
