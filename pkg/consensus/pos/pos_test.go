package pos

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerchain/ledgerchain/pkg/consensus"
	"github.com/ledgerchain/ledgerchain/pkg/keys"
	"github.com/ledgerchain/ledgerchain/pkg/types"
)

func TestGenerateBlockFailsWithNoValidators(t *testing.T) {
	engine := New(nil)
	genesis := &types.Block{Header: types.BlockHeader{PrevHash: types.GenesisPrevHash[:]}}

	_, err := engine.GenerateBlock(context.Background(), genesis, types.Transactions{types.DummyTransaction{}})
	require.Error(t, err)
	require.ErrorIs(t, err, consensus.ErrNoValidator)
}

func TestGenerateBlockAndValidateRoundTrip(t *testing.T) {
	engine := New(&State{MinStake: 1, CurValidators: make(map[[32]byte]uint64)})

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	engine.AddValidator(priv, 100)

	genesis := &types.Block{Header: types.BlockHeader{
		PrevHash:  types.GenesisPrevHash[:],
		Timestamp: types.GenesisTimestamp,
		Proof:     engine.GenesisProof(),
	}}

	block, err := engine.GenerateBlock(context.Background(), genesis, types.Transactions{types.DummyTransaction{}})
	require.NoError(t, err)
	require.True(t, engine.Validate(block, genesis))
}

func TestValidateRejectsSignatureOverMutatedHeader(t *testing.T) {
	engine := New(&State{MinStake: 1, CurValidators: make(map[[32]byte]uint64)})

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	engine.AddValidator(priv, 100)

	genesis := &types.Block{Header: types.BlockHeader{PrevHash: types.GenesisPrevHash[:], Proof: engine.GenesisProof()}}
	block, err := engine.GenerateBlock(context.Background(), genesis, types.Transactions{types.DummyTransaction{}})
	require.NoError(t, err)

	block.Header.Timestamp++
	require.False(t, engine.Validate(block, genesis))
}

func TestValidateRejectsStakeBelowMinimum(t *testing.T) {
	engine := New(&State{MinStake: 1000, CurValidators: make(map[[32]byte]uint64)})

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	engine.AddValidator(priv, 5)

	genesis := &types.Block{Header: types.BlockHeader{PrevHash: types.GenesisPrevHash[:], Proof: engine.GenesisProof()}}
	block, err := engine.GenerateBlock(context.Background(), genesis, types.Transactions{types.DummyTransaction{}})
	require.NoError(t, err)
	require.False(t, engine.Validate(block, genesis))
}

func TestValidateRejectsForeignProofType(t *testing.T) {
	engine := New(nil)
	block := &types.Block{Header: types.BlockHeader{Proof: fakeForeignProof{}}}
	require.False(t, engine.Validate(block, nil))
}

type fakeForeignProof struct{}

func (fakeForeignProof) Bytes() []byte { return nil }

func TestSelectValidatorDistributionFavorsHigherStake(t *testing.T) {
	engine := New(&State{MinStake: 1, CurValidators: make(map[[32]byte]uint64)})

	_, heavy, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, light, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	engine.AddValidator(heavy, 990)
	engine.AddValidator(light, 10)

	var heavyKey [32]byte
	copy(heavyKey[:], heavy.Public().(ed25519.PublicKey))

	heavyWins := 0
	const trials = 200
	for i := 0; i < trials; i++ {
		key, ok := engine.selectValidator()
		require.True(t, ok)
		if key == heavyKey {
			heavyWins++
		}
	}
	// With 99% of the stake, the heavily staked validator should win
	// the overwhelming majority of draws; a generous margin avoids
	// flaking on the rare unlucky run.
	require.Greater(t, heavyWins, trials/2)
}

func TestEncodeDecodeStateRoundTrip(t *testing.T) {
	engine := New(&State{CurValidators: make(map[[32]byte]uint64)})

	_, privA, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, privB, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	engine.AddValidator(privA, 42)
	engine.AddValidator(privB, 7)

	data := engine.EncodeState()

	restored := New(&State{CurValidators: make(map[[32]byte]uint64)})
	require.NoError(t, restored.DecodeState(data))
	require.Equal(t, engine.State.CurValidators, restored.State.CurValidators)
}

func TestDecodeTransactionDelegatesToPoSTransaction(t *testing.T) {
	signer, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	tx := &types.PoSTransaction{Kind: types.KindTransfer, To: "bob", Amount: 5}
	require.NoError(t, tx.Sign(signer))

	buf := bytes.NewBuffer(tx.Bytes())

	engine := New(nil)
	decoded, err := engine.DecodeTransaction(buf)
	require.NoError(t, err)
	require.True(t, decoded.Verify())
}
