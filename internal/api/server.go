// Package api is the node's HTTP surface: submit a transaction, query a
// balance, read the head state, and upgrade to the broadcast feed,
// grounded on evm-ingestion/api/server.go's mux.HandleFunc + net.Listen
// + graceful Shutdown pattern.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/containerman17/sanchain/internal/broadcast"
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/mempool"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/store"
	"github.com/containerman17/sanchain/internal/utxoset"
)

// Server is the node's HTTP API.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	mempool    *mempool.Mempool
	utxos      *utxoset.UTXOSet
	hub        *broadcast.Hub
}

// NewServer wires the HTTP API to the store, mempool, UTXO set and
// broadcast hub it serves.
func NewServer(s *store.Store, mp *mempool.Mempool, set *utxoset.UTXOSet, hub *broadcast.Hub) *Server {
	return &Server{store: s, mempool: mp, utxos: set, hub: hub}
}

// Start serves the API on addr until Stop is called.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tx", s.handleSubmitTx)
	mux.HandleFunc("GET /balance/{owner}", s.handleBalance)
	mux.HandleFunc("GET /config", s.handleConfig)
	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.ServeHTTP)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.httpServer = &http.Server{Handler: mux}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[api] server error: %v", err)
		}
	}()
	log.Printf("[api] listening on %s", addr)
	return nil
}

// Stop gracefully shuts the API server down.
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.httpServer.Shutdown(ctx)
}

func (s *Server) handleSubmitTx(w http.ResponseWriter, r *http.Request) {
	var tx model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		http.Error(w, "invalid transaction payload", http.StatusBadRequest)
		return
	}

	if err := s.mempool.Submit(tx); err != nil {
		if err == ledger.ErrDoubleReservation {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.hub != nil {
		if record, err := json.Marshal(tx); err == nil {
			if frame, err := broadcast.Encode(broadcast.KindTransaction, record); err == nil {
				s.hub.Publish(frame)
			}
		}
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"uid": tx.Uid})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	ownerHex := strings.TrimSpace(r.PathValue("owner"))
	ownerBytes, err := parseHexHash(ownerHex)
	if err != nil {
		http.Error(w, "invalid owner", http.StatusBadRequest)
		return
	}
	balance, err := s.utxos.Balance(ownerBytes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"owner": ownerHex, "balance": balance})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

func parseHexHash(s string) (model.Hash, error) {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return model.Hash{}, fmt.Errorf("api: owner must be a hex string: %w", err)
	}
	return model.HashFromBytes(decoded)
}
