package types

import (
	"encoding/binary"
	"strings"

	"github.com/ledgerchain/ledgerchain/pkg/crypto"
)

// Proof is the consensus-specific payload carried in a header. PoW
// carries {bits, nonce}; PoS carries {validator pubkey, signature}.
// Bytes returns the exact, deterministic encoding that both feeds the
// header hash and is persisted as part of the stored block.
type Proof interface {
	Bytes() []byte
}

// BlockHeader is the hash-linked metadata of a block.
//
// PrevHash and MerkleRoot are raw byte strings rather than fixed
// 32-byte hashes because the genesis block's sentinel values are the
// ASCII literal "0" repeated 64 times, not a real 32-byte digest.
type BlockHeader struct {
	PrevHash   []byte
	MerkleRoot []byte
	Timestamp  int64
	Proof      Proof
}

// Hash computes the header hash: double-SHA256 over prev_hash,
// merkle_root, the little-endian timestamp, and the encoded proof
// payload, concatenated in that order.
func (h BlockHeader) Hash() Hash {
	buf := make([]byte, 0, len(h.PrevHash)+len(h.MerkleRoot)+8+32)
	buf = append(buf, h.PrevHash...)
	buf = append(buf, h.MerkleRoot...)
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(h.Timestamp))
	buf = append(buf, ts[:]...)
	buf = append(buf, h.Proof.Bytes()...)

	return Hash(crypto.DoubleSHA256(buf))
}

// Block is a header paired with the transactions it commits to.
type Block struct {
	Header BlockHeader
	Txs    Transactions
}

// GenesisPrevHash and GenesisMerkleRoot are the sentinel values the
// genesis block carries instead of a real predecessor link or Merkle
// root; they are intentionally not 32 bytes.
var (
	GenesisPrevHash   = []byte(strings.Repeat("0", 64))
	GenesisMerkleRoot = []byte(strings.Repeat("0", 64))
)

// GenesisTimestamp is the fixed Unix timestamp stamped on every chain's
// genesis block.
const GenesisTimestamp int64 = 1_685_000_000
