package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// ProofDecoder reconstructs a consensus-specific proof payload from
// its wire bytes. Each consensus implementation (PoW, PoS) supplies
// one, since the codec itself has no notion of which proof variant a
// given chain uses.
type ProofDecoder interface {
	DecodeProof(r io.Reader) (types.Proof, error)
}

// TransactionDecoder reconstructs a transaction from its wire bytes.
type TransactionDecoder interface {
	DecodeTransaction(r io.Reader) (types.Transaction, error)
}

// EncodeHeader writes prev_hash and merkle_root length-prefixed (their
// length varies: 32 bytes normally, 64 for the genesis sentinel),
// followed by the little-endian timestamp and the encoded proof.
func EncodeHeader(w io.Writer, h types.BlockHeader) error {
	if err := WriteBytes(w, h.PrevHash); err != nil {
		return err
	}
	if err := WriteBytes(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := WriteInt64(w, h.Timestamp); err != nil {
		return err
	}
	return WriteBytes(w, h.Proof.Bytes())
}

// DecodeHeader reads a header previously written by EncodeHeader,
// using dec to reconstruct the concrete proof payload.
func DecodeHeader(r io.Reader, dec ProofDecoder) (types.BlockHeader, error) {
	var h types.BlockHeader
	var err error

	if h.PrevHash, err = ReadBytes(r); err != nil {
		return h, fmt.Errorf("codec: read prev_hash: %w", err)
	}
	if h.MerkleRoot, err = ReadBytes(r); err != nil {
		return h, fmt.Errorf("codec: read merkle_root: %w", err)
	}
	if h.Timestamp, err = ReadInt64(r); err != nil {
		return h, fmt.Errorf("codec: read timestamp: %w", err)
	}
	proofBytes, err := ReadBytes(r)
	if err != nil {
		return h, fmt.Errorf("codec: read proof: %w", err)
	}
	proof, err := dec.DecodeProof(bytes.NewReader(proofBytes))
	if err != nil {
		return h, fmt.Errorf("codec: decode proof: %w", err)
	}
	h.Proof = proof
	return h, nil
}

// EncodeBlock writes a complete block: header, then a varint
// transaction count, then each transaction length-prefixed.
func EncodeBlock(block *types.Block) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeHeader(&buf, block.Header); err != nil {
		return nil, err
	}
	if err := WriteVarInt(&buf, uint64(len(block.Txs))); err != nil {
		return nil, err
	}
	for _, tx := range block.Txs {
		enc, ok := tx.(interface{ Bytes() []byte })
		if !ok {
			return nil, fmt.Errorf("codec: transaction %T does not support canonical encoding", tx)
		}
		if err := WriteBytes(&buf, enc.Bytes()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeBlock reads a block previously written by EncodeBlock.
func DecodeBlock(data []byte, proofDec ProofDecoder, txDec TransactionDecoder) (*types.Block, error) {
	r := bytes.NewReader(data)
	header, err := DecodeHeader(r, proofDec)
	if err != nil {
		return nil, err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read tx count: %w", err)
	}
	txs := make(types.Transactions, count)
	for i := uint64(0); i < count; i++ {
		txBytes, err := ReadBytes(r)
		if err != nil {
			return nil, fmt.Errorf("codec: read tx %d: %w", i, err)
		}
		tx, err := txDec.DecodeTransaction(bytes.NewReader(txBytes))
		if err != nil {
			return nil, fmt.Errorf("codec: decode tx %d: %w", i, err)
		}
		txs[i] = tx
	}

	return &types.Block{Header: header, Txs: txs}, nil
}
