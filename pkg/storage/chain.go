package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerchain/ledgerchain/pkg/codec"
	"github.com/ledgerchain/ledgerchain/pkg/consensus"
	"github.com/ledgerchain/ledgerchain/pkg/monitoring"
	"github.com/ledgerchain/ledgerchain/pkg/types"
)

// Chain is an ordered, append-only sequence of blocks backed by an
// embedded key-value engine, validated and extended through a
// pluggable Consensus. The whole validate-and-commit critical section
// runs under a single mutex: this engine targets one writer at a time,
// trading write concurrency for a validation pipeline with no partial,
// half-applied states to reason about. GenerateBlock does not hold the
// mutex while the consensus engine builds a candidate; the candidate
// then goes through AddBlock like any other block.
type Chain struct {
	mu        sync.Mutex
	db        *Database
	consensus consensus.Consensus
	metrics   *monitoring.Metrics
}

// SetMetrics attaches m so every AddBlock call is observed. Passing
// nil disables recording.
func (c *Chain) SetMetrics(m *monitoring.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Open opens (or creates) the chain store at path under cs. A fresh
// store is bootstrapped with a genesis block built from cs.GenesisProof
// before Open returns; an existing store has its consensus state
// restored from the persisted "state" entry.
func Open(path string, cs consensus.Consensus) (*Chain, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", ErrStoreIO)
	}

	c := &Chain{db: db, consensus: cs}

	stateBytes, err := db.Get([]byte(keyState))
	if err != nil {
		return nil, fmt.Errorf("storage: read state: %w", ErrStoreIO)
	}
	if stateBytes != nil {
		if err := cs.DecodeState(stateBytes); err != nil {
			return nil, fmt.Errorf("storage: restore state: %w", ErrDecode)
		}
	}

	exists, err := db.Has(heightKey(0))
	if err != nil {
		return nil, fmt.Errorf("storage: check genesis: %w", ErrStoreIO)
	}
	if !exists {
		if err := c.writeGenesis(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Close releases the underlying key-value engine's resources.
func (c *Chain) Close() error {
	return c.db.Close()
}

func (c *Chain) writeGenesis() error {
	genesis := &types.Block{
		Header: types.BlockHeader{
			PrevHash:   types.GenesisPrevHash,
			MerkleRoot: types.GenesisMerkleRoot,
			Timestamp:  types.GenesisTimestamp,
			Proof:      c.consensus.GenesisProof(),
		},
	}
	return c.commit(genesis, 0, true)
}

// commit encodes block and writes it, its height index, and the chain
// tip pointers in one atomic batch. When stateChanged is true, the
// consensus engine's current EncodeState is persisted alongside it.
func (c *Chain) commit(block *types.Block, height uint64, stateChanged bool) error {
	encoded, err := codec.EncodeBlock(block)
	if err != nil {
		return fmt.Errorf("storage: encode block: %w", ErrDecode)
	}
	hash := block.Header.Hash()

	batch := c.db.NewBatch()
	batch.Put(blockKey(hash), encoded)
	batch.Put(heightKey(height), hash[:])
	batch.Put([]byte(keyLastHash), hash[:])
	heightBytes := encodeHeightValue(height)
	batch.Put([]byte(keyHeight), heightBytes)
	if stateChanged {
		batch.Put([]byte(keyState), c.consensus.EncodeState())
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("storage: commit: %w", ErrStoreIO)
	}
	return nil
}

// PersistConsensusState writes the consensus engine's current
// EncodeState to the store outside the block-append path, for
// administrative changes that mutate consensus state without
// producing a block (such as registering a proof-of-stake validator).
// Without this, a change like AddValidator only lives in memory until
// the next block happens to trigger a retarget-driven state write,
// which proof-of-stake never does on its own.
func (c *Chain) PersistConsensusState() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.db.Put([]byte(keyState), c.consensus.EncodeState()); err != nil {
		return fmt.Errorf("storage: persist state: %w", ErrStoreIO)
	}
	return nil
}

func encodeHeightValue(height uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(height >> (8 * i))
	}
	return buf
}

func decodeHeightValue(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("storage: malformed height value")
	}
	var height uint64
	for i := 0; i < 8; i++ {
		height |= uint64(data[i]) << (8 * i)
	}
	return height, nil
}

// Height returns the current chain tip's height. A freshly opened
// chain always has at least the genesis block at height 0.
func (c *Chain) Height() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heightLocked()
}

func (c *Chain) heightLocked() (uint64, error) {
	data, err := c.db.Get([]byte(keyHeight))
	if err != nil {
		return 0, fmt.Errorf("storage: read height: %w", ErrStoreIO)
	}
	if data == nil {
		return 0, fmt.Errorf("storage: %w: chain has no height recorded", ErrNotFound)
	}
	return decodeHeightValue(data)
}

// GetBlock returns the block stored at height.
func (c *Chain) GetBlock(height uint64) (*types.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getBlockLocked(height)
}

func (c *Chain) getBlockLocked(height uint64) (*types.Block, error) {
	hashBytes, err := c.db.Get(heightKey(height))
	if err != nil {
		return nil, fmt.Errorf("storage: read height index: %w", ErrStoreIO)
	}
	if hashBytes == nil {
		return nil, fmt.Errorf("storage: %w: no block at height %d", ErrNotFound, height)
	}
	var hash types.Hash
	copy(hash[:], hashBytes)
	return c.getBlockByHashLocked(hash)
}

func (c *Chain) getBlockByHashLocked(hash types.Hash) (*types.Block, error) {
	data, err := c.db.Get(blockKey(hash))
	if err != nil {
		return nil, fmt.Errorf("storage: read block: %w", ErrStoreIO)
	}
	if data == nil {
		return nil, fmt.Errorf("storage: %w: block %s", ErrNotFound, hash)
	}
	block, err := codec.DecodeBlock(data, c.consensus, c.consensus)
	if err != nil {
		return nil, fmt.Errorf("storage: %w: %v", ErrDecode, err)
	}
	return block, nil
}

// GetLastBlock returns the chain tip.
func (c *Chain) GetLastBlock() (*types.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	height, err := c.heightLocked()
	if err != nil {
		return nil, err
	}
	return c.getBlockLocked(height)
}

// AddBlock validates block as the successor of the current tip and,
// if acceptable, commits it. The full check, retarget, and commit
// sequence runs under the chain's lock.
func (c *Chain) AddBlock(block *types.Block) (err error) {
	start := time.Now()
	var newHeight uint64
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveAppend(start, newHeight, err)
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	prevHeight, err := c.heightLocked()
	if err != nil {
		return err
	}
	prev, err := c.getBlockLocked(prevHeight)
	if err != nil {
		return err
	}

	prevHash := prev.Header.Hash()
	if !bytes.Equal(block.Header.PrevHash, prevHash[:]) {
		return fmt.Errorf("storage: %w: prev_hash does not link to the current tip", ErrInvalidBlock)
	}
	if block.Header.Timestamp < prev.Header.Timestamp {
		return fmt.Errorf("storage: %w: timestamp precedes predecessor", ErrInvalidBlock)
	}
	expectedRoot, ok := block.Txs.MerkleRoot()
	if !ok {
		return fmt.Errorf("storage: %w: %v", ErrInvalidBlock, consensus.ErrNoMerkleRoot)
	}
	if !bytes.Equal(block.Header.MerkleRoot, expectedRoot) {
		return fmt.Errorf("storage: %w: merkle_root does not match transactions", ErrInvalidBlock)
	}

	if !c.consensus.Validate(block, prev) {
		return fmt.Errorf("storage: %w: consensus rejected block", ErrInvalidBlock)
	}

	newHeight = prevHeight + 1
	stateChanged, err := c.maybeRetarget(newHeight, block)
	if err != nil {
		return err
	}

	return c.commit(block, newHeight, stateChanged)
}

// VerifyChain walks every stored block in hash-key order and checks
// that its recorded height index actually resolves back to it,
// guarding against a height pointer left dangling by a partial write
// outside this package's own commit path (a hand-edited store, or one
// recovered from a crashed non-atomic backend).
func (c *Chain) VerifyChain() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	height, err := c.heightLocked()
	if err != nil {
		return err
	}

	iter := c.db.NewIterator([]byte("block_"))
	defer iter.Release()

	seen := make(map[types.Hash]bool)
	for iter.Next() {
		hash, err := parseBlockKey(iter.Key())
		if err != nil {
			return fmt.Errorf("storage: %w: %v", ErrDecode, err)
		}
		block, err := codec.DecodeBlock(iter.Value(), c.consensus, c.consensus)
		if err != nil {
			return fmt.Errorf("storage: %w: block %s: %v", ErrDecode, hash, err)
		}
		if got := block.Header.Hash(); got != hash {
			return fmt.Errorf("storage: %w: block stored under key %s actually hashes to %s", ErrInvalidBlock, hash, got)
		}
		seen[hash] = true
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("storage: %w: %v", ErrStoreIO, err)
	}
	if uint64(len(seen)) != height+1 {
		return fmt.Errorf("storage: %w: stored %d blocks but height index reports %d", ErrInvalidBlock, len(seen), height+1)
	}
	for h := uint64(0); h <= height; h++ {
		hashBytes, err := c.db.Get(heightKey(h))
		if err != nil {
			return fmt.Errorf("storage: read height index: %w", ErrStoreIO)
		}
		var hash types.Hash
		copy(hash[:], hashBytes)
		if hashBytes == nil || !seen[hash] {
			return fmt.Errorf("storage: %w: height %d does not resolve to a stored block", ErrInvalidBlock, h)
		}
	}
	return nil
}

// maybeRetarget lets a Retargeter-capable consensus recompute the
// difficulty that should govern blocks after the one just validated,
// applying it in memory so the subsequent commit persists it.
func (c *Chain) maybeRetarget(height uint64, block *types.Block) (stateChanged bool, err error) {
	rt, ok := c.consensus.(consensus.Retargeter)
	if !ok {
		return false, nil
	}

	newBits, changed, err := rt.Retarget(height, block, c.getBlockLocked)
	if err != nil {
		return false, fmt.Errorf("storage: %w: retarget: %v", ErrInvalidBlock, err)
	}
	if changed {
		rt.ApplyBits(newBits)
	}
	return changed, nil
}

// GenerateBlock asks the consensus engine for a candidate extending
// the current tip with txs, then appends it.
func (c *Chain) GenerateBlock(ctx context.Context, txs types.Transactions) (*types.Block, error) {
	c.mu.Lock()
	prevHeight, err := c.heightLocked()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	prev, err := c.getBlockLocked(prevHeight)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	block, err := c.consensus.GenerateBlock(ctx, prev, txs)
	if err != nil {
		return nil, fmt.Errorf("storage: generate block: %w", err)
	}
	if err := c.AddBlock(block); err != nil {
		return nil, err
	}
	return block, nil
}
