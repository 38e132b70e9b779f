package model

// Uid is a 64-bit identifier, unique within a node's lifetime (spec.md §3).
type Uid int64

// NoUid is the sentinel meaning "unassigned" - used for an unspent
// output's spender field before it has been reserved or spent. The
// source project's sqlite schema compares against the literal -1
// ("WHERE spender_transaction_uid = -1"), so -1 is the sentinel value
// here too rather than 0.
const NoUid Uid = -1

// IsAssigned reports whether u is a real, minted identifier.
func (u Uid) IsAssigned() bool { return u != NoUid }

// PubKey is a DER-encoded RSA public key. encoding/json base64-encodes
// []byte automatically, which is exactly the "byte strings are base64"
// canonical rule in spec.md §4.2 - no custom marshaling needed.
type PubKey []byte
