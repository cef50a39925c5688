package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xFC, 0xFD, 0xFFFF, 0x10000, 0xFFFFFFFF, 0x100000000, ^uint64(0)}
	for _, v := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, v))

		got, err := ReadVarInt(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestVarIntUsesShortestEncodingBelow0xFD(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 42))
	require.Equal(t, []byte{42}, buf.Bytes())
}

func TestBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("ledgerchain block payload")
	require.NoError(t, WriteBytes(&buf, data))

	got, err := ReadBytes(&buf)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestBytesRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBytes(&buf, nil))

	got, err := ReadBytes(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}
