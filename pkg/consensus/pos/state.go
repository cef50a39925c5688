package pos

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// State holds the tunable parameters and the one piece of mutable,
// persisted consensus state: the current validator set and its
// stakes. Validator signing keys never live here; see PoS.validatorKeys.
type State struct {
	// MinStake is the minimum stake a validator must hold for Validate
	// to accept its blocks. selectValidator does not consult it: any
	// validator with non-zero stake can be selected.
	MinStake uint64
	// StakeLockPeriod is the number of blocks a stake commitment
	// remains locked once placed.
	StakeLockPeriod uint64
	// AnnualInterestRate is the reward rate paid to locked stake.
	AnnualInterestRate float64
	// ValidatorCount is the target size of the active validator set.
	ValidatorCount int
	// EpochLength is the number of blocks between validator set
	// re-evaluations.
	EpochLength uint64
	// SecurityDeposit is the minimum balance a validator forfeits on
	// provable misbehavior.
	SecurityDeposit uint64

	// CurValidators maps each active validator's ed25519 public key to
	// its current stake. This is the only field EncodeState persists.
	CurValidators map[[32]byte]uint64
}

// DefaultState returns parameters in the same spirit as the reference
// node's demonstration defaults.
func DefaultState() *State {
	return &State{
		MinStake:           1000,
		StakeLockPeriod:    10000,
		AnnualInterestRate: 0.1,
		ValidatorCount:     5,
		EpochLength:        100,
		SecurityDeposit:    100,
		CurValidators:      make(map[[32]byte]uint64),
	}
}

// EncodeState writes CurValidators sorted by public key, so the
// encoding is deterministic regardless of map iteration order.
func (p *PoS) EncodeState() []byte {
	keys := make([][32]byte, 0, len(p.State.CurValidators))
	for k := range p.State.CurValidators {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	var buf bytes.Buffer
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(keys)))
	buf.Write(count[:])
	for _, k := range keys {
		buf.Write(k[:])
		var stake [8]byte
		binary.LittleEndian.PutUint64(stake[:], p.State.CurValidators[k])
		buf.Write(stake[:])
	}
	return buf.Bytes()
}

// DecodeState restores CurValidators from bytes written by
// EncodeState. Validator signing keys are never part of this data;
// AddValidator must be called again for any key this node controls.
func (p *PoS) DecodeState(data []byte) error {
	r := bytes.NewReader(data)
	var count [4]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return fmt.Errorf("pos: decode state: read count: %w", err)
	}
	n := binary.LittleEndian.Uint32(count[:])

	validators := make(map[[32]byte]uint64, n)
	for i := uint32(0); i < n; i++ {
		var key [32]byte
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return fmt.Errorf("pos: decode state: read key %d: %w", i, err)
		}
		var stake [8]byte
		if _, err := io.ReadFull(r, stake[:]); err != nil {
			return fmt.Errorf("pos: decode state: read stake %d: %w", i, err)
		}
		validators[key] = binary.LittleEndian.Uint64(stake[:])
	}
	p.State.CurValidators = validators
	return nil
}
