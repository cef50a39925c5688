package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"
)

// PublicKey is a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// ParsePublicKeyHex parses the hex string a PoSTransaction's signer
// field carries (the compressed serialization of a secp256k1 key).
func ParsePublicKeyHex(s string) (*PublicKey, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keys: decode signer hex: %w", err)
	}
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("keys: parse signer public key: %w", err)
	}
	return &PublicKey{key: key}, nil
}

// Bytes returns the serialized public key.
func (pub *PublicKey) Bytes(compressed bool) []byte {
	if compressed {
		return pub.key.SerializeCompressed()
	}
	return pub.key.SerializeUncompressed()
}

// Hash160 returns RIPEMD160(SHA256(pubkey)), used as a short validator
// or signer fingerprint.
func (pub *PublicKey) Hash160() []byte {
	sha := sha256.Sum256(pub.Bytes(true))

	ripe := ripemd160.New()
	ripe.Write(sha[:])

	return ripe.Sum(nil)
}

// String returns the hex representation signers carry in a
// PoSTransaction's signer field.
func (pub *PublicKey) String() string {
	return fmt.Sprintf("%x", pub.Bytes(true))
}

// Verify checks sig against a 32-byte message hash.
func (pub *PublicKey) Verify(hash []byte, sig *Signature) bool {
	if len(hash) != 32 {
		return false
	}

	return sig.sig.Verify(hash, pub.key)
}
