// Package crypto wraps the RSA keypair and hashing operations spec.md §1
// treats as an external cryptographic oracle: key generation, DER
// encoding, signing, verification and SHA-256 hashing. Nothing here is
// domain logic - it is the named operations the ledger calls by contract.
package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"

	"github.com/containerman17/sanchain/internal/model"
)

// KeyBits is the RSA modulus size used for every keypair this node mints.
const KeyBits = 2048

// GenerateKeypair mints a fresh RSA keypair for a wallet or miner identity.
func GenerateKeypair() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, KeyBits)
}

// DER returns the canonical PKCS#1 DER encoding of a public key - the form
// every PubKey in the wire protocol carries (spec.md §3: "all cryptographic
// keys are serialized in a canonical DER encoding").
func DER(pub *rsa.PublicKey) model.PubKey {
	return model.PubKey(x509.MarshalPKCS1PublicKey(pub))
}

// ParseDER decodes a DER-encoded RSA public key.
func ParseDER(der model.PubKey) (*rsa.PublicKey, error) {
	return x509.ParsePKCS1PublicKey(der)
}

// VerificationKey is the SHA-256 of a public key's DER serialization - the
// 32-byte owner address spec.md §3 defines.
func VerificationKey(pub *rsa.PublicKey) model.Hash {
	return Hash(DER(pub))
}

// Hash computes the SHA-256 digest of data.
func Hash(data []byte) model.Hash {
	return model.Hash(sha256.Sum256(data))
}

// Sign signs the SHA-256 digest of data with priv using PKCS#1 v1.5, as
// the source project's "rsa.sign(data, key, 'SHA-256')" does.
func Sign(priv *rsa.PrivateKey, data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, priv, stdcrypto.SHA256, digest[:])
}

// Verify checks a PKCS#1 v1.5 signature over the SHA-256 digest of data.
func Verify(pub *rsa.PublicKey, data, signature []byte) error {
	if len(signature) == 0 {
		return errors.New("crypto: empty signature")
	}
	digest := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(pub, stdcrypto.SHA256, digest[:], signature)
}

// deterministicReader turns a 64-bit seed into a reproducible byte stream,
// used only to mint the constant reward-sender keypair below - it is never
// used for wallet keys, which always draw from crypto/rand.
type deterministicReader struct {
	state uint64
}

func (d *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		// xorshift64* - good enough for minting a fixed, reproducible
		// keypair; not used anywhere security-sensitive.
		d.state ^= d.state << 13
		d.state ^= d.state >> 7
		d.state ^= d.state << 17
		p[i] = byte(d.state * 0x2545F4914F6CDD1D >> 56)
	}
	return len(p), nil
}

func newDeterministicReader(seed uint64) *deterministicReader {
	if seed == 0 {
		seed = 1
	}
	return &deterministicReader{state: seed}
}

// rewardSeed seeds the constant, well-known reward-sender keypair
// (spec.md §6). Baking in a formulaic, reproducible generation (rather
// than a hand-authored PEM blob, which this code cannot validate without
// running the toolchain) guarantees every build of this node mints the
// exact same keypair, satisfying "a constant, well-known keypair (shipped
// with the node) whose DER-encoded public key acts as the identity of the
// protocol itself".
const rewardSeed uint64 = 0x53414e4348414e30

var rewardPrivateKey *rsa.PrivateKey

func init() {
	key, err := rsa.GenerateKey(newDeterministicReader(rewardSeed), KeyBits)
	if err != nil {
		panic("crypto: failed to mint constant reward-sender keypair: " + err.Error())
	}
	rewardPrivateKey = key
}

// RewardSenderPrivateKey returns the protocol's constant reward identity.
func RewardSenderPrivateKey() *rsa.PrivateKey { return rewardPrivateKey }

// RewardSenderPublicKey returns the public half of the reward identity.
func RewardSenderPublicKey() *rsa.PublicKey { return &rewardPrivateKey.PublicKey }
