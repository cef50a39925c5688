package consensus

import "github.com/ledgerchain/ledgerchain/pkg/types"

// Retargeter is an optional extension a Consensus implementation
// provides when its notion of "current difficulty" can change as the
// chain grows. Proof-of-work implements it; proof-of-stake, whose
// validator weights change by explicit staking rather than by height,
// does not.
type Retargeter interface {
	// CurBits returns the value currently in effect.
	CurBits() uint32

	// ApplyBits updates the in-memory value; the caller is responsible
	// for persisting EncodeState() afterward.
	ApplyBits(bits uint32)

	// Retarget computes the bits that should govern blocks after the
	// one just accepted at height, using getBlock to look up
	// already-committed ancestors as needed. changed reports whether
	// newBits differs from the value CurBits currently returns.
	Retarget(height uint64, block *types.Block, getBlock func(uint64) (*types.Block, error)) (newBits uint32, changed bool, err error)
}
