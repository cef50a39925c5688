package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ledgerchain/ledgerchain/pkg/crypto"
	"github.com/ledgerchain/ledgerchain/pkg/keys"
)

// TransactionKind tags which payload a PoSTransaction carries.
type TransactionKind uint8

const (
	// KindTransfer moves a balance from the signer to another account.
	KindTransfer TransactionKind = iota
	// KindStake commits the signer's balance as validator stake.
	KindStake
)

// PoSTransaction is the transaction type a stake-weighted chain
// commits: a signed transfer or stake operation, identified by the
// hex-encoded secp256k1 public key in Signer.
type PoSTransaction struct {
	Kind      TransactionKind
	To        string // only meaningful for KindTransfer
	Amount    uint64
	Signer    string // hex-encoded compressed secp256k1 public key
	Signature []byte // DER-encoded ECDSA signature, empty until signed
	Sequence  uint64
}

var _ Transaction = (*PoSTransaction)(nil)

func writeField(buf *bytes.Buffer, data []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(data)))
	buf.Write(n[:])
	buf.Write(data)
}

func readField(r io.Reader) ([]byte, error) {
	var n [4]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return nil, err
	}
	data := make([]byte, binary.LittleEndian.Uint32(n[:]))
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// body is the canonical encoding of every field this transaction is
// authenticated over; Signature is never part of it, since a
// signature cannot cover itself.
func (tx *PoSTransaction) body() []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(tx.Kind))
	writeField(&buf, []byte(tx.To))
	var amount, seq [8]byte
	binary.LittleEndian.PutUint64(amount[:], tx.Amount)
	binary.LittleEndian.PutUint64(seq[:], tx.Sequence)
	buf.Write(amount[:])
	buf.Write(seq[:])
	writeField(&buf, []byte(tx.Signer))
	return buf.Bytes()
}

// Hash returns the double-SHA256 of the transaction's full canonical
// encoding, signature included, matching how every other stored value
// in this engine is hashed.
func (tx *PoSTransaction) Hash() Hash {
	return Hash(crypto.DoubleSHA256(tx.Bytes()))
}

// Sign sets Signer and Signature from signer, authenticating the
// transaction's current body(). Callers must not mutate Kind, To,
// Amount, or Sequence after signing; doing so invalidates Signature.
func (tx *PoSTransaction) Sign(signer *keys.PrivateKey) error {
	tx.Signer = hex.EncodeToString(signer.PublicKey().Bytes(true))
	digest := crypto.DoubleSHA256(tx.body())
	sig, err := signer.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("types: sign transaction: %w", err)
	}
	tx.Signature = sig.Serialize()
	return nil
}

// Verify checks that Signature authenticates body() under the
// secp256k1 key encoded in Signer. It reports false, rather than
// erroring, on any malformed field: an unverifiable transaction is
// simply not valid.
func (tx *PoSTransaction) Verify() bool {
	if len(tx.Signature) == 0 || tx.Signer == "" {
		return false
	}
	pub, err := keys.ParsePublicKeyHex(tx.Signer)
	if err != nil {
		return false
	}
	sig, err := keys.ParseSignature(tx.Signature)
	if err != nil {
		return false
	}
	digest := crypto.DoubleSHA256(tx.body())
	return pub.Verify(digest[:], sig)
}

// Bytes returns the canonical wire encoding: body() followed by the
// length-prefixed signature.
func (tx *PoSTransaction) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(tx.body())
	writeField(&buf, tx.Signature)
	return buf.Bytes()
}

// DecodePoSTransaction reconstructs a PoSTransaction from bytes
// written by Bytes.
func DecodePoSTransaction(r io.Reader) (*PoSTransaction, error) {
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return nil, fmt.Errorf("types: read tx kind: %w", err)
	}
	to, err := readField(r)
	if err != nil {
		return nil, fmt.Errorf("types: read tx to: %w", err)
	}
	var amount, seq [8]byte
	if _, err := io.ReadFull(r, amount[:]); err != nil {
		return nil, fmt.Errorf("types: read tx amount: %w", err)
	}
	if _, err := io.ReadFull(r, seq[:]); err != nil {
		return nil, fmt.Errorf("types: read tx sequence: %w", err)
	}
	signer, err := readField(r)
	if err != nil {
		return nil, fmt.Errorf("types: read tx signer: %w", err)
	}
	sig, err := readField(r)
	if err != nil {
		return nil, fmt.Errorf("types: read tx signature: %w", err)
	}

	return &PoSTransaction{
		Kind:      TransactionKind(kind[0]),
		To:        string(to),
		Amount:    binary.LittleEndian.Uint64(amount[:]),
		Signer:    string(signer),
		Signature: sig,
		Sequence:  binary.LittleEndian.Uint64(seq[:]),
	}, nil
}
