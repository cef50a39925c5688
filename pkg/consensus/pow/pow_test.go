package pow

import (
	"bytes"
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerchain/ledgerchain/pkg/types"
)

func TestBitsToTargetKnownValue(t *testing.T) {
	// 0x1d00ffff is the well-known mainnet genesis difficulty bits.
	target := BitsToTarget(0x1d00ffff)
	want := new(big.Int)
	want.SetString("00ffff0000000000000000000000000000000000000000000000000000", 16)
	require.Equal(t, 0, target.Cmp(want))
}

func TestBitsToTargetNegativeBitIsZero(t *testing.T) {
	target := BitsToTarget(0x01800000)
	require.Equal(t, 0, target.Sign())
}

func TestTargetToBitsRoundTripsSmallTargets(t *testing.T) {
	target := big.NewInt(0x7fffff)
	bits := TargetToBits(target)
	require.Equal(t, uint32(0x037fffff), bits)
	require.Equal(t, 0, BitsToTarget(bits).Cmp(target))
}

func TestGenerateBlockMinesBelowTarget(t *testing.T) {
	state := &State{
		TargetTimespan:           120,
		DifficultyAdjustInterval: 10,
		InitialBits:              0x207fffff,
		CurBits:                  0x207fffff,
	}
	engine := New(state)

	genesis := &types.Block{Header: types.BlockHeader{
		PrevHash:  types.GenesisPrevHash[:],
		Timestamp: types.GenesisTimestamp,
		Proof:     engine.GenesisProof(),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	block, err := engine.GenerateBlock(ctx, genesis, types.Transactions{types.DummyTransaction{}})
	require.NoError(t, err)
	require.True(t, engine.Validate(block, genesis))
}

func TestValidateRejectsWrongDifficulty(t *testing.T) {
	engine := New(&State{CurBits: 0x1d00ffff})

	block := &types.Block{Header: types.BlockHeader{
		Proof: Proof{Bits: 0x1f00ffff, Nonce: 0},
	}}
	require.False(t, engine.Validate(block, nil))
}

func TestValidateRejectsForeignProofType(t *testing.T) {
	engine := New(nil)
	block := &types.Block{Header: types.BlockHeader{Proof: fakeForeignProof{}}}
	require.False(t, engine.Validate(block, nil))
}

type fakeForeignProof struct{}

func (fakeForeignProof) Bytes() []byte { return nil }

func TestDecodeTransactionRoundTrip(t *testing.T) {
	engine := New(nil)
	var buf bytes.Buffer
	buf.WriteString("Dummy")

	tx, err := engine.DecodeTransaction(&buf)
	require.NoError(t, err)
	require.Equal(t, types.DummyTransaction{}, tx)
}

func TestDecodeTransactionRejectsUnknownPayload(t *testing.T) {
	engine := New(nil)
	var buf bytes.Buffer
	buf.WriteString("fake!")

	_, err := engine.DecodeTransaction(&buf)
	require.Error(t, err)
}

func TestRetargetNoopBeforeBoundary(t *testing.T) {
	engine := New(&State{DifficultyAdjustInterval: 10, TargetTimespan: 120, CurBits: 0x1f00ffff})
	bits, changed, err := engine.Retarget(3, &types.Block{}, nil)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, uint32(0x1f00ffff), bits)
}

func TestRetargetLowersDifficultyWhenBlocksAreSlow(t *testing.T) {
	state := &State{
		TargetTimespan:           100,
		DifficultyAdjustInterval: 10,
		InitialBits:              0x1e00ffff,
		CurBits:                  0x1e00ffff,
	}
	engine := New(state)

	first := &types.Block{Header: types.BlockHeader{
		Timestamp: 0,
		Proof:     Proof{Bits: state.InitialBits},
	}}
	// 2000 seconds for a 10-block span against a 100-second timespan:
	// blocks came in far slower than targeted, so the target must grow
	// (difficulty falls).
	last := &types.Block{Header: types.BlockHeader{
		Timestamp: 2000,
		Proof:     Proof{Bits: state.InitialBits},
	}}

	bits, changed, err := engine.Retarget(10, last, func(h uint64) (*types.Block, error) {
		require.Equal(t, uint64(0), h)
		return first, nil
	})
	require.NoError(t, err)
	require.True(t, changed)

	newTarget := BitsToTarget(bits)
	oldTarget := BitsToTarget(state.InitialBits)
	require.Equal(t, 1, newTarget.Cmp(oldTarget), "slow blocks should widen the target (lower difficulty)")
}

func TestRetargetClampsExtremeSpans(t *testing.T) {
	state := &State{
		TargetTimespan:           100,
		DifficultyAdjustInterval: 10,
		InitialBits:              0x1e00ffff,
		CurBits:                  0x1e00ffff,
	}
	engine := New(state)

	first := &types.Block{Header: types.BlockHeader{Timestamp: 0, Proof: Proof{Bits: state.InitialBits}}}
	// An enormous span would imply a 100x-plus target growth; the
	// retarget must clamp this to 4x the previous target.
	last := &types.Block{Header: types.BlockHeader{Timestamp: 1_000_000, Proof: Proof{Bits: state.InitialBits}}}

	bits, _, err := engine.Retarget(10, last, func(uint64) (*types.Block, error) { return first, nil })
	require.NoError(t, err)

	newTarget := BitsToTarget(bits)
	oldTarget := BitsToTarget(state.InitialBits)
	maxTarget := new(big.Int).Lsh(oldTarget, 2)
	require.True(t, newTarget.Cmp(maxTarget) <= 0)
}

func TestEncodeDecodeStateRoundTrip(t *testing.T) {
	engine := New(&State{CurBits: 0x1d00ffff})
	data := engine.EncodeState()

	restored := New(&State{CurBits: 0})
	require.NoError(t, restored.DecodeState(data))
	require.Equal(t, uint32(0x1d00ffff), restored.State.CurBits)
}
