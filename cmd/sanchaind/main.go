// Command sanchaind runs one sanchain node: it serves the mempool/balance
// HTTP API, mines blocks from the mempool in a background loop, commits
// sealed blocks to the store, and republishes accepted transactions and
// committed blocks to the broadcast hub.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/containerman17/sanchain/internal/api"
	"github.com/containerman17/sanchain/internal/broadcast"
	"github.com/containerman17/sanchain/internal/commit"
	"github.com/containerman17/sanchain/internal/consts"
	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/idgen"
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/mempool"
	"github.com/containerman17/sanchain/internal/metrics"
	"github.com/containerman17/sanchain/internal/miner"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/nodeconfig"
	"github.com/containerman17/sanchain/internal/store"
	"github.com/containerman17/sanchain/internal/utxoset"
)

func main() {
	proc := nodeconfig.Load()
	dataDir := filepath.Join(proc.DataRoot, proc.NodeID)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("failed to create data directory %s: %v", dataDir, err)
	}

	minerKey, err := nodeconfig.LoadOrCreateIdentity(dataDir)
	if err != nil {
		log.Fatalf("failed to load node identity: %v", err)
	}
	minerPubKey := crypto.DER(&minerKey.PublicKey)
	log.Printf("mining as %s", crypto.VerificationKey(&minerKey.PublicKey))

	st, err := store.Open(filepath.Join(dataDir, "pebble"))
	if err != nil {
		log.Fatalf("failed to open store at %s: %v", dataDir, err)
	}
	defer st.Close()

	if err := recoverConfigFromMirror(st, dataDir); err != nil {
		log.Fatalf("failed to load config file mirror: %v", err)
	}

	idGen, err := idgen.NewPersistent(st)
	if err != nil {
		log.Fatalf("failed to start identifier generator: %v", err)
	}

	mp := mempool.New(st)
	set := utxoset.New(st)
	commitEngine := commit.New(st)

	hub := broadcast.NewHub()
	server := api.NewServer(st, mp, set, hub)
	if err := server.Start(proc.APIAddr); err != nil {
		log.Fatalf("failed to start API server: %v", err)
	}
	defer server.Stop()

	metrics.StartServer(proc.MetricsAddr)

	if proc.PeerAddr != "" {
		go relayFromPeer(proc.PeerAddr, mp)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMiningLoop(ctx, st, mp, set, commitEngine, idGen, hub, minerPubKey, dataDir)
}

// recoverConfigFromMirror loads the JSON config file mirror spec.md §6.5
// describes as loaded on startup. The pebble config row is the source of
// truth; store.GetConfig falls back to model.DefaultConfig() whenever that
// row is absent, which is indistinguishable from "pebble lost its data but
// the mirror survived" as well as "brand new node". Only the former case
// calls for recovery, so this seeds the store from the mirror exactly when
// the store is still at its just-initialized default and a mirror exists.
func recoverConfigFromMirror(st *store.Store, dataDir string) error {
	cfg, err := st.GetConfig()
	if err != nil {
		return err
	}
	if cfg != model.DefaultConfig() {
		return nil
	}

	fileCfg, ok, err := nodeconfig.ReadConfigFile(dataDir)
	if err != nil {
		return err
	}
	if !ok || fileCfg == model.DefaultConfig() {
		return nil
	}

	log.Printf("recovering head state from config file mirror at block %d", fileCfg.LastBlockIndex)
	st.Lock()
	defer st.Unlock()

	b := st.NewBatch()
	if err := b.PutConfig(fileCfg); err != nil {
		b.Close()
		return err
	}
	return b.Commit()
}

// runMiningLoop polls the mempool on consts.MinerPollInterval, draining,
// mining, and committing whatever is waiting - spec.md §4.6's "repeat
// indefinitely" loop, interruptible by ctx.
func runMiningLoop(
	ctx context.Context,
	st *store.Store,
	mp *mempool.Mempool,
	set *utxoset.UTXOSet,
	commitEngine *commit.Engine,
	minter ledger.Minter,
	hub *broadcast.Hub,
	minerPubKey model.PubKey,
	dataDir string,
) {
	ticker := time.NewTicker(consts.MinerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("shutting down")
			return
		case <-ticker.C:
		}

		cfg, err := st.GetConfig()
		if err != nil {
			log.Printf("failed to read config: %v", err)
			continue
		}

		drained, err := mp.Drain(int(cfg.BlockHeightLimit))
		if err != nil {
			log.Printf("failed to drain mempool: %v", err)
			continue
		}
		if len(drained) == 0 {
			continue
		}

		start := time.Now()
		result, err := miner.Mine(ctx, drained, minerPubKey, cfg, set, minter)
		metrics.MiningDurationSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			if err == ledger.ErrCancelled {
				return
			}
			log.Printf("mining pass failed: %v", err)
			continue
		}

		for _, invalid := range result.Invalid {
			log.Printf("dropping invalid transaction %d: %v", invalid.Tx.Uid, invalid.Err)
			metrics.VerificationRejectsTotal.WithLabelValues(rejectReason(invalid.Err)).Inc()
			if err := commitEngine.ReleaseInputs(invalid.Tx); err != nil {
				log.Printf("failed to release inputs for rejected tx %d: %v", invalid.Tx.Uid, err)
			}
		}

		if err := commitEngine.Commit(ctx, result.Block); err != nil {
			log.Printf("commit failed: %v", err)
			continue
		}

		metrics.BlocksMinedTotal.Inc()
		metrics.ChainHeight.Set(float64(result.Block.Index))
		metrics.Circulation.Set(float64(result.Block.Config.Circulation.Units()))
		metrics.MempoolDepth.Set(0)
		log.Printf("mined block %d with %d transactions", result.Block.Index, len(result.Block.Transactions))

		if err := nodeconfig.WriteConfigFile(dataDir, result.Block.Config); err != nil {
			log.Printf("failed to write config file: %v", err)
		}

		publishBlock(hub, result.Block)
	}
}

func publishBlock(hub *broadcast.Hub, blk model.Block) {
	record, err := json.Marshal(blk)
	if err != nil {
		log.Printf("failed to marshal block for broadcast: %v", err)
		return
	}
	frame, err := broadcast.Encode(broadcast.KindBlock, record)
	if err != nil {
		log.Printf("failed to encode block broadcast frame: %v", err)
		return
	}
	hub.Publish(frame)
}

// relayFromPeer connects to another node's broadcast feed and resubmits
// every transaction it sees to the local mempool, letting sanchaind nodes
// form a simple flat network without a dedicated relay process.
func relayFromPeer(addr string, mp *mempool.Mempool) {
	for {
		client, err := broadcast.Dial(addr)
		if err != nil {
			log.Printf("relay: failed to connect to %s: %v", addr, err)
			time.Sleep(consts.MinerPollInterval)
			continue
		}
		log.Printf("relay: connected to %s", addr)
		err = client.Listen(func(env broadcast.Envelope) error {
			if env.Type != broadcast.KindTransaction {
				return nil
			}
			var tx model.Transaction
			if err := json.Unmarshal(env.Data, &tx); err != nil {
				return nil
			}
			if err := mp.Submit(tx); err != nil {
				log.Printf("relay: rejected peer transaction %d: %v", tx.Uid, err)
			}
			return nil
		})
		if err != nil {
			log.Printf("relay: disconnected from %s: %v", addr, err)
		}
		client.Close()
		time.Sleep(consts.MinerPollInterval)
	}
}

func rejectReason(err error) string {
	switch err {
	case ledger.ErrInvalidSignature:
		return "invalid_signature"
	case ledger.ErrUnknownInput:
		return "unknown_input"
	case ledger.ErrInsufficientFunds:
		return "insufficient_funds"
	case ledger.ErrNonPositiveAmount:
		return "non_positive_amount"
	case ledger.ErrDoubleReservation:
		return "double_reservation"
	default:
		return "other"
	}
}
