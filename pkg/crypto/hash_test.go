package crypto

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoubleSHA256MatchesTwoRounds(t *testing.T) {
	data := []byte("ledgerchain")
	first := sha256.Sum256(data)
	want := sha256.Sum256(first[:])

	require.Equal(t, want, DoubleSHA256(data))
}

func TestDoubleSHA256DiffersFromSingleRound(t *testing.T) {
	data := []byte("ledgerchain")
	single := sha256.Sum256(data)
	require.NotEqual(t, single, DoubleSHA256(data))
}
