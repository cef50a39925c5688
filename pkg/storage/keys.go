package storage

import (
	"fmt"
	"strings"

	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// Chain metadata keys, unprefixed strings rather than byte-prefixed
// binary keys: there is no transaction or address index to collide
// with, so the flat namespace the reference implementation uses is
// carried over unchanged.
const (
	keyLastHash = "last_hash"
	keyHeight   = "height"
	keyState    = "state"
)

// blockKey formats the key a block's data is stored under.
func blockKey(hash types.Hash) []byte {
	return []byte("block_" + hash.String())
}

// heightKey formats the key a height-to-hash index entry is stored
// under, zero-padded to 16 hex characters so keys sort in height order.
func heightKey(height uint64) []byte {
	return []byte(fmt.Sprintf("height_%016x", height))
}

// parseBlockKey extracts the hash from a key written by blockKey.
func parseBlockKey(key []byte) (types.Hash, error) {
	const prefix = "block_"
	s := string(key)
	if !strings.HasPrefix(s, prefix) {
		return types.Hash{}, fmt.Errorf("storage: %q is not a block key", s)
	}
	return types.HashFromHex(strings.TrimPrefix(s, prefix))
}
