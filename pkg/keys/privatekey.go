// Package keys wraps secp256k1 key material used to identify and
// authenticate the signer of a stake-transferring transaction. It is
// independent of the ed25519 keys a proof-of-stake validator signs
// block headers with; those live in pkg/consensus/pos.
package keys

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PrivateKey is a secp256k1 signing key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GeneratePrivateKey generates a new random private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("keys: generate private key: %w", err)
	}

	return &PrivateKey{key: key}, nil
}

// NewPrivateKeyFromBytes parses a 32-byte scalar into a private key.
func NewPrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("keys: private key must be 32 bytes, got %d", len(data))
	}

	key := secp256k1.PrivKeyFromBytes(data)
	return &PrivateKey{key: key}, nil
}

// Bytes returns the private key's 32-byte scalar.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// PublicKey derives the corresponding public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{
		key: pk.key.PubKey(),
	}
}

// Sign signs a 32-byte message hash.
func (pk *PrivateKey) Sign(hash []byte) (*Signature, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("keys: hash must be 32 bytes, got %d", len(hash))
	}

	sig := ecdsa.Sign(pk.key, hash)

	return &Signature{sig: sig}, nil
}

// String returns the hex-encoded scalar. Never log this outside tests.
func (pk *PrivateKey) String() string {
	return fmt.Sprintf("%x", pk.Bytes())
}
