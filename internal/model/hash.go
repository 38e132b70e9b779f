// Package model defines the canonical, wire-encodable records of the
// ledger: blocks, transactions, UTXOs and the head-state config. A single
// struct per record with its JSON field order matching spec.md §4.2's
// canonical column order is the encoding: encoding/json always marshals
// struct fields in declaration order, so two runs of this code produce
// byte-identical output without a hand-rolled ordered-map encoder.
package model

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// Hash is a 32-byte SHA-256 digest.
type Hash [32]byte

// ZeroHash is the all-zero 32-byte hash, the Merkle root of an empty
// transaction list and the genesis block's LastBlockHash.
var ZeroHash = Hash{}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

// Bytes returns a copy of the underlying bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, len(h))
	copy(b, h[:])
	return b
}

// HashFromBytes copies b into a Hash, erroring if the length is wrong.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != len(h) {
		return h, errors.New("model: hash must be 32 bytes")
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// MarshalJSON renders the hash as base64, matching "byte strings are
// base64" in spec.md §4.2. Fixed-size arrays aren't base64-encoded by
// encoding/json automatically (only []byte is), so this is explicit.
func (h Hash) MarshalJSON() ([]byte, error) {
	enc := base64.StdEncoding.EncodeToString(h[:])
	return []byte(`"` + enc + `"`), nil
}

// UnmarshalJSON parses a base64-encoded hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	s, err := unquoteJSONString(data)
	if err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	parsed, err := HashFromBytes(decoded)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func unquoteJSONString(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", errors.New("model: expected JSON string")
	}
	return string(data[1 : len(data)-1]), nil
}
