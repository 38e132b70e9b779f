package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/containerman17/sanchain/internal/mempool"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
	"github.com/containerman17/sanchain/internal/store"
	"github.com/containerman17/sanchain/internal/utxoset"
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

// newTestMux builds the same handler tree Start registers, without
// binding a listener, so handlers can be exercised with httptest.
func newTestMux(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tx", s.handleSubmitTx)
	mux.HandleFunc("GET /balance/{owner}", s.handleBalance)
	mux.HandleFunc("GET /config", s.handleConfig)
	return mux
}

func TestHandleSubmitTxAccepted(t *testing.T) {
	st := openTestStore(t)
	mp := mempool.New(st)
	set := utxoset.New(st)
	s := NewServer(st, mp, set, nil)
	mux := newTestMux(s)

	owner := model.Hash{9}
	input := model.UTXO{Uid: 1, Owner: owner, Value: money.FromUnits(50), SpenderTxUid: model.NoUid}
	b := st.NewBatch()
	if err := b.InsertUTXO(input); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	tx := model.Transaction{Kind: model.KindTransaction, Uid: 2, Inputs: []model.UTXO{input}}
	body, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/tx", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSubmitTxRejectsMalformedBody(t *testing.T) {
	st := openTestStore(t)
	mp := mempool.New(st)
	set := utxoset.New(st)
	s := NewServer(st, mp, set, nil)
	mux := newTestMux(s)

	req := httptest.NewRequest(http.MethodPost, "/tx", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleBalanceSumsUnspent(t *testing.T) {
	st := openTestStore(t)
	mp := mempool.New(st)
	set := utxoset.New(st)
	s := NewServer(st, mp, set, nil)
	mux := newTestMux(s)

	owner := model.Hash{7}
	b := st.NewBatch()
	if err := b.InsertUTXO(model.UTXO{Uid: 1, Owner: owner, Value: money.FromUnits(30), SpenderTxUid: model.NoUid}); err != nil {
		t.Fatal(err)
	}
	if err := b.InsertUTXO(model.UTXO{Uid: 2, Owner: owner, Value: money.FromUnits(20), SpenderTxUid: model.NoUid}); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/balance/"+owner.String(), nil)
	req.SetPathValue("owner", owner.String())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Balance money.Amount `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Balance != money.FromUnits(50) {
		t.Errorf("expected balance 50, got %v", payload.Balance)
	}
}

func TestHandleBalanceRejectsInvalidOwner(t *testing.T) {
	st := openTestStore(t)
	mp := mempool.New(st)
	set := utxoset.New(st)
	s := NewServer(st, mp, set, nil)
	mux := newTestMux(s)

	req := httptest.NewRequest(http.MethodGet, "/balance/not-hex", nil)
	req.SetPathValue("owner", "not-hex")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleConfigReturnsDefaults(t *testing.T) {
	st := openTestStore(t)
	mp := mempool.New(st)
	set := utxoset.New(st)
	s := NewServer(st, mp, set, nil)
	mux := newTestMux(s)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cfg model.Config
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != model.DefaultConfig() {
		t.Errorf("expected default config, got %+v", cfg)
	}
}
