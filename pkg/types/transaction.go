package types

import (
	"crypto/sha256"

	"github.com/ledgerchain/ledgerchain/pkg/crypto"
)

// Transaction is the engine's view of a transaction: a value with a
// stable content hash and a structural verification check. The engine
// never applies a transaction's effects (balances, stake weights); it
// only records the body and runs this structural check.
type Transaction interface {
	Hash() Hash
	Verify() bool
}

// Transactions is an ordered, Merkle-committed sequence of
// transactions. Order is part of the commitment: two sequences with
// the same elements in different order produce different roots.
type Transactions []Transaction

// MerkleRoot computes the Merkle root over the transaction hashes. It
// returns ok=false for an empty sequence, matching the engine's rule
// that only the genesis block may carry no real Merkle root.
func (txs Transactions) MerkleRoot() (root []byte, ok bool) {
	if len(txs) == 0 {
		return nil, false
	}
	leaves := make([][32]byte, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.Hash()
	}
	r := crypto.MerkleRoot(leaves)
	return r[:], true
}

// DummyTransaction is a constant-hash placeholder used by the CLI's
// proof-of-work mining loop and in tests that don't exercise
// transaction content. The genesis block carries no transactions.
type DummyTransaction struct{}

// Hash returns a constant hash; DummyTransaction carries no real data.
func (DummyTransaction) Hash() Hash {
	return sha256.Sum256([]byte("Dummy"))
}

// Verify always succeeds: a dummy transaction carries no signature to
// check, so it is trivially well-formed.
func (DummyTransaction) Verify() bool {
	return true
}

// Bytes returns the fixed, content-free encoding used by the codec;
// DummyTransaction carries no fields, so every instance encodes
// identically.
func (DummyTransaction) Bytes() []byte {
	return []byte("Dummy")
}
