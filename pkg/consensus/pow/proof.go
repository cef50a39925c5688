// Package pow implements the proof-of-work consensus engine: a
// Bitcoin-style nonce search against a compact-encoded difficulty
// target, with periodic retargeting driven by block timestamps.
package pow

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledgerchain/ledgerchain/pkg/codec"
	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// Proof is the proof-of-work payload carried in a block header: the
// compact difficulty bits the block was mined against, and the nonce
// that satisfied it.
type Proof struct {
	Bits  uint32
	Nonce uint64
}

var _ types.Proof = Proof{}

// Bytes returns the fixed 12-byte encoding: 4-byte little-endian bits
// followed by the 8-byte little-endian nonce.
func (p Proof) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(12)
	_ = codec.WriteUint32(&buf, p.Bits)
	_ = codec.WriteUint64(&buf, p.Nonce)
	return buf.Bytes()
}

// DecodeProof reconstructs a Proof from the bytes Bytes wrote.
func (PoW) DecodeProof(r io.Reader) (types.Proof, error) {
	bits, err := codec.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("pow: read bits: %w", err)
	}
	nonce, err := codec.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("pow: read nonce: %w", err)
	}
	return Proof{Bits: bits, Nonce: nonce}, nil
}
