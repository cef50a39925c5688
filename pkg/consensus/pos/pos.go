package pos

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ledgerchain/ledgerchain/pkg/consensus"
	"github.com/ledgerchain/ledgerchain/pkg/monitoring"
	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// PoS is the proof-of-stake consensus engine: the next block is
// produced by a validator selected with probability proportional to
// its stake, and authenticated with that validator's ed25519
// signature.
type PoS struct {
	State *State

	// validatorKeys holds signing keys for validators this node
	// controls. It is never persisted; a node that restarts must be
	// re-handed its own validators' keys via AddValidator.
	validatorKeys map[[32]byte]ed25519.PrivateKey

	// Metrics records validator selections. Nil disables recording.
	Metrics *monitoring.Metrics
}

// New returns a PoS engine governed by state. Passing nil uses
// DefaultState.
func New(state *State) *PoS {
	if state == nil {
		state = DefaultState()
	}
	return &PoS{
		State:         state,
		validatorKeys: make(map[[32]byte]ed25519.PrivateKey),
	}
}

var _ consensus.Consensus = (*PoS)(nil)

// AddValidator registers priv as a validator this node can produce
// blocks for, with the given stake. Calling it again for the same key
// replaces the stake.
func (p *PoS) AddValidator(priv ed25519.PrivateKey, stake uint64) {
	var key [32]byte
	copy(key[:], priv.Public().(ed25519.PublicKey))
	p.State.CurValidators[key] = stake
	p.validatorKeys[key] = priv
}

// RegisterValidator records stake for a validator this node does not
// hold the signing key for: a peer announced at startup (from
// bootstrap configuration, in lieu of a gossip layer) whose blocks
// this node should accept but never produce itself.
func (p *PoS) RegisterValidator(pubKey [32]byte, stake uint64) {
	p.State.CurValidators[pubKey] = stake
}

// selectValidator picks an active validator with probability
// proportional to its stake, using a cryptographically secure source
// of randomness. It returns ok=false if no validator holds any stake.
func (p *PoS) selectValidator() (key [32]byte, ok bool) {
	var total uint64
	for _, stake := range p.State.CurValidators {
		total += stake
	}
	if total == 0 {
		return key, false
	}

	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(total))
	if err != nil {
		return key, false
	}
	target := n.Uint64()

	// Map iteration order is randomized by the runtime, which is fine
	// here: any fixed traversal order is equally valid so long as it
	// partitions [0, total) by stake weight, which this loop does.
	for k, stake := range p.State.CurValidators {
		if target < stake {
			if p.Metrics != nil {
				p.Metrics.RecordValidatorSelection()
			}
			return k, true
		}
		target -= stake
	}
	return key, false
}

// Validate reports whether block's proof was produced by a validator
// that, as of the previous state, held at least MinStake, and whether
// its signature authenticates the header.
func (p *PoS) Validate(block, prev *types.Block) bool {
	proof, ok := block.Header.Proof.(Proof)
	if !ok {
		return false
	}

	stake, staked := p.State.CurValidators[proof.ValidatorPubKey]
	if !staked || stake < p.State.MinStake {
		return false
	}

	pubKey := ed25519.PublicKey(proof.ValidatorPubKey[:])
	presign := presignHeader(block.Header, pubKey)
	hash := presign.Hash()
	return ed25519.Verify(pubKey, hash[:], proof.Signature[:])
}

// GenerateBlock selects a validator by stake weight, builds a
// candidate extending prev with txs, and signs it with that
// validator's key.
func (p *PoS) GenerateBlock(ctx context.Context, prev *types.Block, txs types.Transactions) (*types.Block, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	validatorKey, ok := p.selectValidator()
	if !ok {
		return nil, fmt.Errorf("pos: %w", consensus.ErrNoValidator)
	}
	priv, ok := p.validatorKeys[validatorKey]
	if !ok {
		return nil, fmt.Errorf("pos: %w: no signing key held for selected validator", consensus.ErrNoValidator)
	}

	merkleRoot, ok := txs.MerkleRoot()
	if !ok {
		return nil, fmt.Errorf("pos: %w", consensus.ErrNoMerkleRoot)
	}

	prevHash := prev.Header.Hash()
	header := types.BlockHeader{
		PrevHash:   append([]byte(nil), prevHash[:]...),
		MerkleRoot: merkleRoot,
		Timestamp:  time.Now().Unix(),
	}

	pubKey := priv.Public().(ed25519.PublicKey)
	presign := presignHeader(header, pubKey)
	presignHash := presign.Hash()
	signature := ed25519.Sign(priv, presignHash[:])

	var proof Proof
	copy(proof.ValidatorPubKey[:], pubKey)
	copy(proof.Signature[:], signature)
	header.Proof = proof

	return &types.Block{Header: header, Txs: txs}, nil
}

// GenesisProof returns the all-zero proof written into a fresh chain's
// genesis header; it authenticates nothing and is never passed to
// Validate.
func (p *PoS) GenesisProof() types.Proof {
	return Proof{}
}

// DecodeTransaction reconstructs a PoSTransaction from its wire bytes.
func (PoS) DecodeTransaction(r io.Reader) (types.Transaction, error) {
	return types.DecodePoSTransaction(r)
}
