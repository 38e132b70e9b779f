// Command sanchain-selftest runs the six scenarios named in spec.md §8
// (genesis mining through cross-node determinism) against fresh,
// temporary nodes and prints a colored pass/fail summary, the same shape
// as indexers/pcx/selftest/selftest.go's RunTests/runTestCase, adapted
// from an HTTP-response diff checker to in-process ledger assertions.
package main

import (
	"context"
	"crypto/rsa"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/containerman17/sanchain/internal/commit"
	"github.com/containerman17/sanchain/internal/crypto"
	"github.com/containerman17/sanchain/internal/ledger"
	"github.com/containerman17/sanchain/internal/mempool"
	"github.com/containerman17/sanchain/internal/miner"
	"github.com/containerman17/sanchain/internal/model"
	"github.com/containerman17/sanchain/internal/money"
	"github.com/containerman17/sanchain/internal/store"
	"github.com/containerman17/sanchain/internal/utxoset"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBold  = "\033[1m"
)

type scenario struct {
	Name string
	Run  func() error
}

func main() {
	scenarios := []scenario{
		{"S1 genesis mining", s1GenesisMining},
		{"S2 single transfer", s2SingleTransfer},
		{"S3 double-spend attempt", s3DoubleSpend},
		{"S4 insufficient funds", s4InsufficientFunds},
		{"S5 invalid signature", s5InvalidSignature},
		{"S6 determinism", s6Determinism},
	}

	fmt.Printf("Running %d scenarios...\n\n", len(scenarios))
	passed, failed := 0, 0
	for _, sc := range scenarios {
		if err := sc.Run(); err != nil {
			fmt.Printf("%-28s - %s FAIL%s: %v\n", sc.Name, colorRed, colorReset, err)
			failed++
		} else {
			fmt.Printf("%-28s - %s OK%s\n", sc.Name, colorGreen, colorReset)
			passed++
		}
	}

	fmt.Printf("\n=== %sSUMMARY%s ===\n", colorBold, colorReset)
	fmt.Printf("Passed: %s%d%s, Failed: %s%d%s\n", colorGreen, passed, colorReset, colorRed, failed, colorReset)
	if failed > 0 {
		os.Exit(1)
	}
}

// node bundles one fresh, temporary-directory-backed ledger stack.
type node struct {
	store   *store.Store
	mempool *mempool.Mempool
	utxos   *utxoset.UTXOSet
	commit  *commit.Engine
	minter  *sequentialMinter
	miner   *rsa.PrivateKey
}

func newNode(dir string) (*node, error) {
	key, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	return newNodeWithKey(dir, key)
}

func newNodeWithKey(dir string, key *rsa.PrivateKey) (*node, error) {
	st, err := store.Open(filepath.Join(dir, "pebble"))
	if err != nil {
		return nil, err
	}
	return &node{
		store:   st,
		mempool: mempool.New(st),
		utxos:   utxoset.New(st),
		commit:  commit.New(st),
		minter:  &sequentialMinter{next: 1},
		miner:   key,
	}, nil
}

// sequentialMinter mints ascending uids deterministically, standing in
// for internal/idgen.PersistentGenerator in scenarios (S6 in particular)
// where wall-clock-derived uids would make two runs incomparable.
type sequentialMinter struct{ next int64 }

func (m *sequentialMinter) Next() (model.Uid, error) {
	uid := model.Uid(m.next)
	m.next++
	return uid, nil
}

func (n *node) mineOne(ctx context.Context) (miner.Result, error) {
	cfg, err := n.store.GetConfig()
	if err != nil {
		return miner.Result{}, err
	}
	drained, err := n.mempool.Drain(int(cfg.BlockHeightLimit))
	if err != nil {
		return miner.Result{}, err
	}
	result, err := miner.Mine(ctx, drained, crypto.DER(&n.miner.PublicKey), cfg, n.utxos, n.minter)
	if err != nil {
		return miner.Result{}, err
	}
	for _, bad := range result.Invalid {
		if err := n.commit.ReleaseInputs(bad.Tx); err != nil {
			return miner.Result{}, err
		}
	}
	if err := n.commit.Commit(ctx, result.Block); err != nil {
		return miner.Result{}, err
	}
	return result, nil
}

func s1GenesisMining() error {
	n, err := newNode(mustTempDir())
	if err != nil {
		return err
	}
	defer n.store.Close()

	result, err := n.mineOne(context.Background())
	if err != nil {
		return err
	}
	if result.Block.Index != 0 {
		return fmt.Errorf("expected block index 0, got %d", result.Block.Index)
	}
	cfg, err := n.store.GetConfig()
	if err != nil {
		return err
	}
	if cfg.LastBlockIndex != 0 {
		return fmt.Errorf("expected last_block_index=0, got %d", cfg.LastBlockIndex)
	}
	if cfg.Circulation != money.FromUnits(100*100_000_000) {
		return fmt.Errorf("expected circulation=100.0, got %s", cfg.Circulation)
	}
	owner := crypto.VerificationKey(&n.miner.PublicKey)
	outs, err := n.utxos.ByOwner(owner, true)
	if err != nil {
		return err
	}
	if len(outs) != 1 || outs[0].Value != money.FromUnits(100*100_000_000) {
		return fmt.Errorf("expected exactly one 100.0 UTXO owned by the miner, got %+v", outs)
	}
	return nil
}

func s2SingleTransfer() error {
	n, err := newNode(mustTempDir())
	if err != nil {
		return err
	}
	defer n.store.Close()

	ctx := context.Background()
	if _, err := n.mineOne(ctx); err != nil {
		return err
	}

	minerOwner := crypto.VerificationKey(&n.miner.PublicKey)
	minerOuts, err := n.utxos.ByOwner(minerOwner, true)
	if err != nil {
		return err
	}
	if len(minerOuts) != 1 {
		return fmt.Errorf("expected 1 miner UTXO after genesis, got %d", len(minerOuts))
	}
	spendable := minerOuts[0]

	receiverKey, err := crypto.GenerateKeypair()
	if err != nil {
		return err
	}
	receiverDER := crypto.DER(&receiverKey.PublicKey)

	tx := model.Transaction{
		Kind:     model.KindTransaction,
		Uid:      900001,
		Sender:   crypto.DER(&n.miner.PublicKey),
		Receiver: receiverDER,
		Amount:   money.FromUnits(10 * 100_000_000),
		Inputs:   []model.UTXO{spendable},
	}
	signable, err := tx.Signable()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(n.miner, signable)
	if err != nil {
		return err
	}
	tx.Signature = sig

	if err := n.mempool.Submit(tx); err != nil {
		return err
	}
	if _, err := n.mineOne(ctx); err != nil {
		return err
	}

	minerTotal, err := n.utxos.Balance(minerOwner)
	if err != nil {
		return err
	}
	expected := money.FromUnits(100*100_000_000 - 10*100_000_000 - 10_000_000 + 100*100_000_000 + 10_000_000) // -10.0 sent, -0.10 fee paid, +reward, +0.10 fee earned
	if minerTotal != expected {
		return fmt.Errorf("expected miner balance %s, got %s", expected, minerTotal)
	}

	receiverOwner := crypto.VerificationKey(&receiverKey.PublicKey)
	receiverOuts, err := n.utxos.ByOwner(receiverOwner, true)
	if err != nil {
		return err
	}
	if len(receiverOuts) != 1 || receiverOuts[0].Value != money.FromUnits(10*100_000_000) {
		return fmt.Errorf("expected receiver to hold exactly one 10.0 UTXO, got %+v", receiverOuts)
	}

	remaining, err := n.store.DrainMempool(10)
	if err != nil {
		return err
	}
	if len(remaining) != 0 {
		return fmt.Errorf("expected empty mempool, found %d", len(remaining))
	}
	return nil
}

func s3DoubleSpend() error {
	n, err := newNode(mustTempDir())
	if err != nil {
		return err
	}
	defer n.store.Close()

	ctx := context.Background()
	if _, err := n.mineOne(ctx); err != nil {
		return err
	}
	minerOwner := crypto.VerificationKey(&n.miner.PublicKey)
	outs, err := n.utxos.ByOwner(minerOwner, true)
	if err != nil {
		return err
	}
	input := outs[0]

	build := func(uid model.Uid, amount money.Amount) (model.Transaction, error) {
		tx := model.Transaction{
			Kind:     model.KindTransaction,
			Uid:      uid,
			Sender:   crypto.DER(&n.miner.PublicKey),
			Receiver: crypto.DER(&n.miner.PublicKey),
			Amount:   amount,
			Inputs:   []model.UTXO{input},
		}
		signable, err := tx.Signable()
		if err != nil {
			return tx, err
		}
		sig, err := crypto.Sign(n.miner, signable)
		if err != nil {
			return tx, err
		}
		tx.Signature = sig
		return tx, nil
	}

	first, err := build(910001, money.FromUnits(1*100_000_000))
	if err != nil {
		return err
	}
	if err := n.mempool.Submit(first); err != nil {
		return fmt.Errorf("expected first submission to succeed: %w", err)
	}

	second, err := build(910002, money.FromUnits(2*100_000_000))
	if err != nil {
		return err
	}
	if err := n.mempool.Submit(second); err != ledger.ErrDoubleReservation {
		return fmt.Errorf("expected ErrDoubleReservation on second submission, got %v", err)
	}
	return nil
}

func s4InsufficientFunds() error {
	n, err := newNode(mustTempDir())
	if err != nil {
		return err
	}
	defer n.store.Close()

	ctx := context.Background()
	if _, err := n.mineOne(ctx); err != nil {
		return err
	}
	minerOwner := crypto.VerificationKey(&n.miner.PublicKey)
	outs, err := n.utxos.ByOwner(minerOwner, true)
	if err != nil {
		return err
	}
	input := outs[0] // the reward UTXO, worth cfg.Reward (100 sanch)

	tx := model.Transaction{
		Kind:     model.KindTransaction,
		Uid:      920001,
		Sender:   crypto.DER(&n.miner.PublicKey),
		Receiver: crypto.DER(&n.miner.PublicKey),
		Amount:   money.FromUnits(200 * 100_000_000), // exceeds the input's real value
		Inputs:   []model.UTXO{input},
	}
	signable, err := tx.Signable()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(n.miner, signable)
	if err != nil {
		return err
	}
	tx.Signature = sig

	// Reservation only checks input availability (spec.md §4.4), not
	// balance sufficiency, so submission must succeed even though
	// verification will later reject it.
	if err := n.mempool.Submit(tx); err != nil {
		return fmt.Errorf("expected submission to succeed despite insufficient funds: %w", err)
	}

	result, err := n.mineOne(ctx)
	if err != nil {
		return err
	}
	if len(result.Invalid) != 1 {
		return fmt.Errorf("expected mining to drop the underfunded transaction, invalid=%d", len(result.Invalid))
	}
	if result.Invalid[0].Err != ledger.ErrInsufficientFunds {
		return fmt.Errorf("expected ErrInsufficientFunds, got %v", result.Invalid[0].Err)
	}
	for _, executed := range result.Block.Transactions {
		if executed.Uid == tx.Uid {
			return fmt.Errorf("underfunded transaction %d should not appear in the committed block", tx.Uid)
		}
	}
	return nil
}

func s5InvalidSignature() error {
	n, err := newNode(mustTempDir())
	if err != nil {
		return err
	}
	defer n.store.Close()

	ctx := context.Background()
	if _, err := n.mineOne(ctx); err != nil {
		return err
	}
	minerOwner := crypto.VerificationKey(&n.miner.PublicKey)
	outs, err := n.utxos.ByOwner(minerOwner, true)
	if err != nil {
		return err
	}
	input := outs[0]

	tx := model.Transaction{
		Kind:     model.KindTransaction,
		Uid:      930001,
		Sender:   crypto.DER(&n.miner.PublicKey),
		Receiver: crypto.DER(&n.miner.PublicKey),
		Amount:   money.FromUnits(1 * 100_000_000),
		Inputs:   []model.UTXO{input},
	}
	signable, err := tx.Signable()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(n.miner, signable)
	if err != nil {
		return err
	}
	sig[0] ^= 0xFF // tamper with one byte
	tx.Signature = sig

	if err := n.mempool.Submit(tx); err != nil {
		return fmt.Errorf("expected tampered transaction to be accepted to the mempool: %w", err)
	}

	result, err := n.mineOne(ctx)
	if err != nil {
		return err
	}
	if len(result.Invalid) != 1 || result.Invalid[0].Err != ledger.ErrInvalidSignature {
		return fmt.Errorf("expected the tampered transaction to be dropped for ErrInvalidSignature, got %+v", result.Invalid)
	}

	// release_inputs must have un-reserved the input for reuse.
	refreshed, ok, err := n.store.GetUTXO(input.Uid)
	if err != nil || !ok {
		return fmt.Errorf("expected input %d to still exist after release: ok=%v err=%v", input.Uid, ok, err)
	}
	if refreshed.SpenderTxUid != model.NoUid {
		return fmt.Errorf("expected input %d to be un-reserved after mining dropped its transaction", input.Uid)
	}
	return nil
}

// s6Determinism mines the same transaction set twice against fresh nodes
// sharing the reward-sender identity, a sequential (not wall-clock)
// minter, and the same starting PoW nonce, and checks the resulting block
// hashes and Merkle roots are bitwise identical - spec.md §8's S6.
func s6Determinism() error {
	rand.Seed(42)
	blockA, err := mineDeterministic()
	if err != nil {
		return err
	}
	rand.Seed(42)
	blockB, err := mineDeterministic()
	if err != nil {
		return err
	}

	if blockA.Hash != blockB.Hash {
		return fmt.Errorf("block hashes diverged: %s vs %s", blockA.Hash, blockB.Hash)
	}
	if blockA.MerkleRoot != blockB.MerkleRoot {
		return fmt.Errorf("merkle roots diverged: %s vs %s", blockA.MerkleRoot, blockB.MerkleRoot)
	}
	return nil
}

func mineDeterministic() (model.Block, error) {
	// Both runs mine under the same well-known keypair so the fee/reward
	// output owners - and therefore every transaction byte - match; a
	// freshly generated per-node keypair would make the blocks diverge
	// for reasons unrelated to the property under test.
	n, err := newNodeWithKey(mustTempDir(), crypto.RewardSenderPrivateKey())
	if err != nil {
		return model.Block{}, err
	}
	defer n.store.Close()
	result, err := n.mineOne(context.Background())
	if err != nil {
		return model.Block{}, err
	}
	return result.Block, nil
}

func mustTempDir() string {
	dir, err := os.MkdirTemp("", "sanchain-selftest-*")
	if err != nil {
		panic(err)
	}
	return dir
}
