package model

// Block is a mined block (spec.md §3): chain height, PoW proof, the
// sealed transaction list (last entry always the BlockReward) and a
// snapshot of the Config at mining time.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    uint64        `json:"timestamp"`
	MerkleRoot   Hash          `json:"merkle_root"`
	Hash         Hash          `json:"hash"`
	Nonce        uint64        `json:"nonce"`
	Transactions []Transaction `json:"transactions"`
	Config       Config        `json:"config"`
}

// RewardTransaction returns the block's trailing BlockReward transaction.
// Blocks are only ever sealed with one appended by the miner, so this is
// always the last entry.
func (b Block) RewardTransaction() (Transaction, bool) {
	if len(b.Transactions) == 0 {
		return Transaction{}, false
	}
	last := b.Transactions[len(b.Transactions)-1]
	if !last.IsReward() {
		return Transaction{}, false
	}
	return last, true
}

// signableBlock is the signable/hashable form of a block: everything
// except Hash and Nonce, which is what the PoW search both seals and
// verifies against (spec.md §4.6).
type signableBlock struct {
	Index        uint64        `json:"index"`
	Timestamp    uint64        `json:"timestamp"`
	MerkleRoot   Hash          `json:"merkle_root"`
	Transactions []Transaction `json:"transactions"`
	Config       Config        `json:"config"`
}

// Signable returns the canonical bytes hashed (with the nonce appended)
// to produce the block's proof-of-work hash.
func (b Block) Signable() ([]byte, error) {
	s := signableBlock{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		MerkleRoot:   b.MerkleRoot,
		Transactions: b.Transactions,
		Config:       b.Config,
	}
	return canonicalMarshal(s)
}
