package store

import "encoding/binary"

// Key layout mirrors the teacher's blockKey/batchKey scheme
// (evm-ingestion/storage/pebble.go): an ASCII prefix followed by a
// fixed-width big-endian encoded component, so a LowerBound/UpperBound
// pair brackets exactly one logical table for range iteration.
const (
	prefixBlock       = "blk:"
	prefixTx          = "tx:"
	prefixUTXO        = "utxo:"
	prefixUTXOOwner   = "utxo_owner:"
	prefixUTXOPTx     = "utxo_ptx:"
	prefixMempool     = "mem:"
	keyConfig         = "config"
	keyIdgenWatermark = "idgen_watermark"
)

func be64(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func be32(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)
	return b
}

func blockKey(index int64) []byte {
	return append([]byte(prefixBlock), be64(index)...)
}

func txKey(uid int64) []byte {
	return append([]byte(prefixTx), be64(uid)...)
}

func utxoKey(uid int64) []byte {
	return append([]byte(prefixUTXO), be64(uid)...)
}

// utxoOwnerKey indexes a UTXO by (owner, uid) so ByOwner can range-scan
// every output belonging to one verification key in uid order.
func utxoOwnerKey(owner [32]byte, uid int64) []byte {
	key := make([]byte, 0, len(prefixUTXOOwner)+32+8)
	key = append(key, prefixUTXOOwner...)
	key = append(key, owner[:]...)
	key = append(key, be64(uid)...)
	return key
}

func utxoOwnerPrefix(owner [32]byte) []byte {
	key := make([]byte, 0, len(prefixUTXOOwner)+32)
	key = append(key, prefixUTXOOwner...)
	key = append(key, owner[:]...)
	return key
}

// utxoPTxKey indexes a UTXO by (producing_tx_hash, output index) for
// by_producing_tx lookups.
func utxoPTxKey(hash [32]byte, index uint32) []byte {
	key := make([]byte, 0, len(prefixUTXOPTx)+32+4)
	key = append(key, prefixUTXOPTx...)
	key = append(key, hash[:]...)
	key = append(key, be32(index)...)
	return key
}

func utxoPTxPrefix(hash [32]byte) []byte {
	key := make([]byte, 0, len(prefixUTXOPTx)+32)
	key = append(key, prefixUTXOPTx...)
	key = append(key, hash[:]...)
	return key
}

func mempoolKey(uid int64) []byte {
	return append([]byte(prefixMempool), be64(uid)...)
}

// prefixUpperBound returns the smallest byte string greater than every
// string having prefix p, giving pebble.IterOptions a tight UpperBound -
// the same ":"/";" trick the teacher's storage/pebble.go uses, generalized
// to arbitrary-length binary prefixes instead of colon-terminated ASCII.
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] != 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
