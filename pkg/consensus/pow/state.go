package pow

import (
	"bytes"
	"fmt"

	"github.com/ledgerchain/ledgerchain/pkg/codec"
)

// State holds the tunable parameters and the one piece of mutable,
// persisted consensus state: the current compact difficulty bits.
type State struct {
	// TargetTimespan is the number of seconds a full retarget interval
	// is expected to take.
	TargetTimespan int64
	// DifficultyAdjustInterval is the block-height period, in blocks,
	// between retargets. A height of zero or a height not divisible by
	// this value never retargets.
	DifficultyAdjustInterval uint64
	// InitialBits seeds a fresh chain's genesis difficulty.
	InitialBits uint32
	// CurBits is the compact difficulty every new block must be mined
	// against; it is the one field EncodeState/DecodeState persist.
	CurBits uint32
}

// DefaultState returns parameters in the same spirit as the reference
// node's regtest-like defaults: a generous starting difficulty and a
// short retarget window suited to tests and local chains.
func DefaultState() *State {
	return &State{
		TargetTimespan:           120,
		DifficultyAdjustInterval: 10,
		InitialBits:              0x1f00ffff,
		CurBits:                  0x1f00ffff,
	}
}

// EncodeState returns CurBits as 4 little-endian bytes; every other
// field is a fixed configuration parameter, not chain state, so it is
// never persisted.
func (p *PoW) EncodeState() []byte {
	var buf bytes.Buffer
	_ = codec.WriteUint32(&buf, p.State.CurBits)
	return buf.Bytes()
}

// DecodeState restores CurBits from bytes written by EncodeState.
func (p *PoW) DecodeState(data []byte) error {
	bits, err := codec.ReadUint32(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("pow: decode state: %w", err)
	}
	p.State.CurBits = bits
	return nil
}
