package pow

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ledgerchain/ledgerchain/pkg/consensus"
	"github.com/ledgerchain/ledgerchain/pkg/monitoring"
	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// checkInterval is how many nonces the mining loop tries between
// cancellation checks and timestamp refreshes.
const checkInterval = 1_000_000

// PoW is the proof-of-work consensus engine: block candidates are
// accepted once their header hash, read as a big-endian integer, is at
// or below the target encoded by State.CurBits.
type PoW struct {
	State *State

	// Metrics records mining attempts and retarget events. Nil
	// disables recording.
	Metrics *monitoring.Metrics
}

var _ consensus.Consensus = (*PoW)(nil)
var _ consensus.Retargeter = (*PoW)(nil)

// New returns a PoW engine governed by state. Passing nil uses
// DefaultState.
func New(state *State) *PoW {
	if state == nil {
		state = DefaultState()
	}
	return &PoW{State: state}
}

// Validate reports whether block carries the difficulty this engine
// currently has in effect, and whether its header hash satisfies the
// target that difficulty implies.
func (p *PoW) Validate(block, prev *types.Block) bool {
	proof, ok := block.Header.Proof.(Proof)
	if !ok {
		return false
	}
	if proof.Bits != p.State.CurBits {
		return false
	}
	target := BitsToTarget(proof.Bits)
	if target.Sign() <= 0 {
		return false
	}
	hash := block.Header.Hash()
	hashInt := new(big.Int).SetBytes(hash[:])
	return hashInt.Cmp(target) <= 0
}

// GenerateBlock builds a candidate extending prev and searches for a
// nonce satisfying the current difficulty target, refreshing the
// header timestamp and checking ctx every checkInterval attempts.
func (p *PoW) GenerateBlock(ctx context.Context, prev *types.Block, txs types.Transactions) (*types.Block, error) {
	merkleRoot, ok := txs.MerkleRoot()
	if !ok {
		return nil, fmt.Errorf("pow: %w", consensus.ErrNoMerkleRoot)
	}

	prevHash := prev.Header.Hash()
	target := BitsToTarget(p.State.CurBits)

	header := types.BlockHeader{
		PrevHash:   append([]byte(nil), prevHash[:]...),
		MerkleRoot: merkleRoot,
		Timestamp:  time.Now().Unix(),
		Proof:      Proof{Bits: p.State.CurBits, Nonce: 0},
	}

	var nonce uint64
	attempts := 0
	for {
		header.Proof = Proof{Bits: p.State.CurBits, Nonce: nonce}
		hash := header.Hash()
		hashInt := new(big.Int).SetBytes(hash[:])
		if hashInt.Cmp(target) <= 0 {
			if p.Metrics != nil {
				p.Metrics.RecordMiningAttempts(uint64(attempts%checkInterval + 1))
			}
			return &types.Block{Header: header, Txs: txs}, nil
		}

		nonce++
		attempts++
		if attempts%checkInterval == 0 {
			if p.Metrics != nil {
				p.Metrics.RecordMiningAttempts(uint64(checkInterval))
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			header.Timestamp = time.Now().Unix()
		}
	}
}

// GenesisProof returns the proof payload written into a fresh chain's
// genesis header: InitialBits with a zero nonce, never itself checked
// against the target.
func (p *PoW) GenesisProof() types.Proof {
	return Proof{Bits: p.State.InitialBits, Nonce: 0}
}

// DecodeTransaction reconstructs the placeholder transaction type this
// engine is exercised with in tests and local chains.
func (PoW) DecodeTransaction(r io.Reader) (types.Transaction, error) {
	var marker [5]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return nil, fmt.Errorf("pow: decode transaction: %w", err)
	}
	if string(marker[:]) != "Dummy" {
		return nil, fmt.Errorf("pow: decode transaction: unrecognized payload %q", marker)
	}
	return types.DummyTransaction{}, nil
}

// CurBits returns the difficulty bits currently in effect.
func (p *PoW) CurBits() uint32 {
	return p.State.CurBits
}

// ApplyBits overwrites the in-memory difficulty bits; the chain store
// calls this once a retarget has been computed and is ready to commit.
func (p *PoW) ApplyBits(bits uint32) {
	p.State.CurBits = bits
}

// Retarget computes the difficulty bits that should govern blocks
// after the one just accepted at height, given that block and a
// lookup for its already-committed ancestors. At genesis, or at any
// height that is not a retarget boundary, the bits are unchanged.
//
// At a retarget boundary (height a positive multiple of
// DifficultyAdjustInterval), the new target is derived from the span
// between the block DifficultyAdjustInterval heights back and block
// itself, scaled by how that span compares to TargetTimespan, and
// clamped to one quarter and four times the previous target.
func (p *PoW) Retarget(height uint64, block *types.Block, getBlock func(uint64) (*types.Block, error)) (newBits uint32, changed bool, err error) {
	interval := p.State.DifficultyAdjustInterval
	if height == 0 || interval == 0 || height%interval != 0 {
		return p.State.CurBits, false, nil
	}

	first, err := getBlock(height - interval)
	if err != nil {
		return 0, false, fmt.Errorf("pow: retarget: load height %d: %w", height-interval, err)
	}

	firstProof, ok := first.Header.Proof.(Proof)
	if !ok {
		return 0, false, fmt.Errorf("pow: retarget: height %d has no proof-of-work proof", height-interval)
	}

	actualSpan := block.Header.Timestamp - first.Header.Timestamp
	if actualSpan < 1 {
		actualSpan = 1
	}

	prevTarget := BitsToTarget(firstProof.Bits)
	newTarget := new(big.Int).Mul(prevTarget, big.NewInt(actualSpan))
	newTarget.Div(newTarget, big.NewInt(p.State.TargetTimespan))

	minTarget := new(big.Int).Rsh(prevTarget, 2)
	maxTarget := new(big.Int).Lsh(prevTarget, 2)
	if newTarget.Cmp(minTarget) < 0 {
		newTarget = minTarget
	} else if newTarget.Cmp(maxTarget) > 0 {
		newTarget = maxTarget
	}

	newBits = TargetToBits(newTarget)
	changed = newBits != p.State.CurBits
	if changed && p.Metrics != nil {
		p.Metrics.RecordRetarget()
	}
	return newBits, changed, nil
}
