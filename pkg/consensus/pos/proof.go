// Package pos implements the proof-of-stake consensus engine: blocks
// are produced by a validator chosen in proportion to stake and
// authenticated with an ed25519 signature over the candidate header.
package pos

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// Proof is the proof-of-stake payload carried in a block header: the
// ed25519 public key of the validator that produced the block, and
// its signature over the header's presignature hash.
type Proof struct {
	ValidatorPubKey [32]byte
	Signature       [64]byte
}

var _ types.Proof = Proof{}

// Bytes returns the fixed 96-byte encoding: the public key followed by
// the signature.
func (p Proof) Bytes() []byte {
	buf := make([]byte, 0, 96)
	buf = append(buf, p.ValidatorPubKey[:]...)
	buf = append(buf, p.Signature[:]...)
	return buf
}

// DecodeProof reconstructs a Proof from the bytes Bytes wrote.
func (PoS) DecodeProof(r io.Reader) (types.Proof, error) {
	var proof Proof
	if _, err := io.ReadFull(r, proof.ValidatorPubKey[:]); err != nil {
		return nil, fmt.Errorf("pos: read validator key: %w", err)
	}
	if _, err := io.ReadFull(r, proof.Signature[:]); err != nil {
		return nil, fmt.Errorf("pos: read signature: %w", err)
	}
	return proof, nil
}

// presignHeader returns a copy of header with its proof's signature
// zeroed, so the validator can sign (and a verifier can recompute) a
// hash that does not depend on the very signature being produced.
func presignHeader(header types.BlockHeader, pubKey ed25519.PublicKey) types.BlockHeader {
	var proof Proof
	copy(proof.ValidatorPubKey[:], pubKey)
	header.Proof = proof
	return header
}
