// Package consensus defines the pluggable consensus contract that
// lets a chain swap between proof-of-work and proof-of-stake without
// changing the storage or validation pipeline around it.
package consensus

import (
	"context"
	"io"

	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// Consensus is the plug-in a chain store drives. A concrete
// implementation (pow.PoW, pos.PoS) is both the validation/generation
// engine and the mutable, persisted consensus state in one value —
// mirroring how the reference implementation folds "cur_bits" and
// "cur_validators" directly into the consensus struct rather than
// keeping state as a separate object.
type Consensus interface {
	// Validate reports whether block is acceptable as the successor
	// of prev under the engine's current view of consensus state. It
	// does not check the header link or Merkle root; that is the
	// chain store's job.
	Validate(block, prev *types.Block) bool

	// GenerateBlock produces a fully populated candidate block
	// extending prev with txs. It may consult wall-clock time and,
	// for PoS, a PRNG; it never mutates persisted state as a side
	// effect of generation alone.
	GenerateBlock(ctx context.Context, prev *types.Block, txs types.Transactions) (*types.Block, error)

	// GenesisProof returns the proof payload written into a fresh
	// chain's genesis header.
	GenesisProof() types.Proof

	// DecodeProof reconstructs a proof payload from its wire bytes,
	// so the codec can read a stored block without knowing the
	// concrete proof type up front.
	DecodeProof(r io.Reader) (types.Proof, error)

	// DecodeTransaction reconstructs a transaction from its wire
	// bytes, for the same reason.
	DecodeTransaction(r io.Reader) (types.Transaction, error)

	// EncodeState returns the canonical encoding of whatever part of
	// consensus state is persisted (e.g. PoW's cur_bits, PoS's
	// cur_validators); secrets such as PoS signer keys are never
	// included.
	EncodeState() []byte

	// DecodeState restores persisted state from bytes written by
	// EncodeState, as when reopening an existing chain.
	DecodeState(data []byte) error
}
