package nodeconfig

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/containerman17/sanchain/internal/crypto"
)

// LoadOrCreateIdentity returns the node's own mining keypair, persisted as
// a PEM-encoded PKCS#1 key under <dataDir>/miner.key. A node that loses
// this file mines under a new identity but loses no ledger state - the
// key is an address, not part of consensus.
//
// This is carried on the standard library (crypto/x509, encoding/pem)
// rather than a pack dependency: none of the example repos persist a
// private key to disk, so there is no corpus idiom to follow here.
func LoadOrCreateIdentity(dataDir string) (*rsa.PrivateKey, error) {
	path := filepath.Join(dataDir, "miner.key")

	if data, err := os.ReadFile(path); err == nil {
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("nodeconfig: %s is not valid PEM", path)
		}
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	priv, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, err
	}
	return priv, nil
}
