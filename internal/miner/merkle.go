package miner

import (
	"crypto/sha256"

	"github.com/containerman17/sanchain/internal/model"
)

// MerkleRoot computes the Merkle root over a list of leaf hashes
// (spec.md §4.6 step 4): iteratively combine adjacent pairs via
// sha256(left++right); an odd leftover at a level is hashed alone
// (sha256(last)) rather than duplicated, so a single leaf roots to its
// own hash; the empty list roots to the 32-byte zero hash.
func MerkleRoot(leaves []model.Hash) model.Hash {
	if len(leaves) == 0 {
		return model.ZeroHash
	}
	level := leaves
	for {
		next := make([]model.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				combined := append(append([]byte{}, level[i][:]...), level[i+1][:]...)
				next = append(next, sha256.Sum256(combined))
			} else {
				next = append(next, sha256.Sum256(level[i][:]))
			}
		}
		level = next
		if len(level) == 1 {
			return level[0]
		}
	}
}
