package consensus

import "errors"

// Sentinel errors a Consensus implementation wraps with fmt.Errorf's
// %w so callers can compare with errors.Is regardless of which engine
// produced them.
var (
	// ErrNoMerkleRoot is returned when GenerateBlock is asked to build
	// a block with no transactions; only a genesis block may omit one.
	ErrNoMerkleRoot = errors.New("consensus: transaction set has no merkle root")

	// ErrNoValidator is returned by a stake-weighted engine when no
	// validator is eligible to produce the next block.
	ErrNoValidator = errors.New("consensus: no eligible validator")
)
