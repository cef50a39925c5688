// Package config loads the node's runtime configuration: which
// consensus engine to run, where its chain store lives, and the
// knobs each consensus engine exposes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ConsensusMode selects which Consensus implementation a node runs.
type ConsensusMode string

const (
	ConsensusPoW ConsensusMode = "pow"
	ConsensusPoS ConsensusMode = "pos"
)

// NodeConfig holds all configuration for a ledger node.
type NodeConfig struct {
	// Node Identity
	NodeID string

	// Storage
	DataDir string // Data directory path

	// Consensus
	Mode ConsensusMode // "pow" or "pos"

	// PoW overrides. Zero means "use the engine's default".
	PoWTargetTimespan           int64  // seconds
	PoWDifficultyAdjustInterval uint64 // blocks

	// PoS bootstrap validators, each "pubkey_hex:stake".
	PoSValidators []string

	// Logging
	LogLevel string // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *NodeConfig {
	return &NodeConfig{
		NodeID:   "ledger-node",
		DataDir:  "./data/node",
		Mode:     ConsensusPoW,
		LogLevel: "info",
	}
}

// LoadFromEnv loads configuration from environment variables,
// starting from DefaultConfig and overriding anything set.
func LoadFromEnv() *NodeConfig {
	cfg := DefaultConfig()

	if nodeID := os.Getenv("NODE_ID"); nodeID != "" {
		cfg.NodeID = nodeID
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	if mode := os.Getenv("CONSENSUS_MODE"); mode != "" {
		cfg.Mode = ConsensusMode(strings.ToLower(mode))
	}

	if timespan := os.Getenv("POW_TARGET_TIMESPAN"); timespan != "" {
		if v, err := strconv.ParseInt(timespan, 10, 64); err == nil {
			cfg.PoWTargetTimespan = v
		}
	}

	if interval := os.Getenv("POW_DIFFICULTY_ADJUST_INTERVAL"); interval != "" {
		if v, err := strconv.ParseUint(interval, 10, 64); err == nil {
			cfg.PoWDifficultyAdjustInterval = v
		}
	}

	if validators := os.Getenv("POS_VALIDATORS"); validators != "" {
		cfg.PoSValidators = strings.Split(validators, ",")
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg
}

// Validate checks if the configuration is well-formed.
func (c *NodeConfig) Validate() error {
	if c.Mode != ConsensusPoW && c.Mode != ConsensusPoS {
		return fmt.Errorf("invalid consensus mode: %s (must be pow or pos)", c.Mode)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.Mode == ConsensusPoS {
		for _, v := range c.PoSValidators {
			parts := strings.SplitN(v, ":", 2)
			if len(parts) != 2 {
				return fmt.Errorf("invalid validator entry %q (want pubkey_hex:stake)", v)
			}
			if _, err := strconv.ParseUint(parts[1], 10, 64); err != nil {
				return fmt.Errorf("invalid stake in validator entry %q: %w", v, err)
			}
		}
	}

	return nil
}

// String returns a human-readable representation of the configuration.
func (c *NodeConfig) String() string {
	return fmt.Sprintf(`Ledger Node Configuration:
  Node ID:             %s
  Data Directory:      %s
  Consensus Mode:      %s
  PoW Target Timespan: %d
  PoW Adjust Interval: %d
  PoS Validators:      %v
  Log Level:           %s`,
		c.NodeID,
		c.DataDir,
		c.Mode,
		c.PoWTargetTimespan,
		c.PoWDifficultyAdjustInterval,
		c.PoSValidators,
		c.LogLevel,
	)
}
