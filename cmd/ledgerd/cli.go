package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/ledgerchain/ledgerchain/pkg/config"
	"github.com/ledgerchain/ledgerchain/pkg/consensus"
	"github.com/ledgerchain/ledgerchain/pkg/consensus/pos"
	"github.com/ledgerchain/ledgerchain/pkg/consensus/pow"
	"github.com/ledgerchain/ledgerchain/pkg/keys"
	"github.com/ledgerchain/ledgerchain/pkg/monitoring"
	"github.com/ledgerchain/ledgerchain/pkg/storage"
	"github.com/ledgerchain/ledgerchain/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "ledgerchain node",
	Long:  "ledgerd drives a ledgerchain chain store: open it, mine proof-of-work blocks, register and propose as a proof-of-stake validator, or inspect its tip.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		nodeCfg = config.LoadFromEnv()
		if err := nodeCfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if !cmd.Flags().Changed("data-dir") {
			dataDirFlag = nodeCfg.DataDir
		}
		if !cmd.Flags().Changed("consensus") {
			consensusFlag = string(nodeCfg.Mode)
		}
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(nodeCfg.LogLevel)); err == nil {
			monitoring.SetGlobalLevel(level)
		}
		return nil
	},
}

var (
	dataDirFlag   string
	consensusFlag string
	stakeFlag     uint64
	countFlag     int
	nodeCfg       *config.NodeConfig
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.DefaultConfig()
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", defaults.DataDir, "chain store directory")
	rootCmd.PersistentFlags().StringVar(&consensusFlag, "consensus", string(defaults.Mode), "consensus engine: pow or pos")

	var openCmd = &cobra.Command{
		Use:   "open",
		Short: "Open (or bootstrap) the chain store and print its tip",
		RunE:  runOpen,
	}
	rootCmd.AddCommand(openCmd)

	var mineCmd = &cobra.Command{
		Use:   "mine",
		Short: "Run the proof-of-work mining loop",
		RunE:  runMine,
	}
	mineCmd.Flags().IntVar(&countFlag, "count", 0, "number of blocks to mine before exiting (0 = run until interrupted)")
	rootCmd.AddCommand(mineCmd)

	var stakeCmd = &cobra.Command{
		Use:   "stake",
		Short: "Manage this node's proof-of-stake validator identity",
	}
	rootCmd.AddCommand(stakeCmd)

	var stakeAddCmd = &cobra.Command{
		Use:   "add-validator",
		Short: "Generate (or load) this node's validator key and register it with the given stake",
		RunE:  runStakeAddValidator,
	}
	stakeAddCmd.Flags().Uint64Var(&stakeFlag, "stake", 0, "stake to register for this validator")
	stakeAddCmd.MarkFlagRequired("stake")
	stakeCmd.AddCommand(stakeAddCmd)

	var stakeProposeCmd = &cobra.Command{
		Use:   "propose",
		Short: "Select a validator by stake weight and append one block",
		RunE:  runStakePropose,
	}
	stakeCmd.AddCommand(stakeProposeCmd)

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the chain tip's height, hash, and timestamp",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Walk the stored chain and confirm every block's height index matches its hash",
		RunE:  runVerify,
	}
	rootCmd.AddCommand(verifyCmd)
}

func buildConsensus() (consensus.Consensus, error) {
	switch config.ConsensusMode(consensusFlag) {
	case config.ConsensusPoW:
		state := pow.DefaultState()
		if nodeCfg != nil && nodeCfg.PoWTargetTimespan != 0 {
			state.TargetTimespan = nodeCfg.PoWTargetTimespan
		}
		if nodeCfg != nil && nodeCfg.PoWDifficultyAdjustInterval != 0 {
			state.DifficultyAdjustInterval = nodeCfg.PoWDifficultyAdjustInterval
		}
		return pow.New(state), nil
	case config.ConsensusPoS:
		cs := pos.New(nil)
		if err := registerConfiguredValidators(cs); err != nil {
			return nil, err
		}
		return cs, nil
	default:
		return nil, fmt.Errorf("unknown consensus mode %q (want pow or pos)", consensusFlag)
	}
}

// registerConfiguredValidators seeds cs's validator set from
// NODE_ID-independent bootstrap entries ("pubkey_hex:stake"); it never
// hands over a signing key, since config carries no secrets.
func registerConfiguredValidators(cs *pos.PoS) error {
	if nodeCfg == nil {
		return nil
	}
	for _, entry := range nodeCfg.PoSValidators {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid validator entry %q (want pubkey_hex:stake)", entry)
		}
		pubBytes, err := hex.DecodeString(parts[0])
		if err != nil || len(pubBytes) != ed25519.PublicKeySize {
			return fmt.Errorf("invalid validator pubkey in %q", entry)
		}
		stake, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid validator stake in %q: %w", entry, err)
		}
		var pubKey [32]byte
		copy(pubKey[:], pubBytes)
		cs.RegisterValidator(pubKey, stake)
	}
	return nil
}

func openChain() (*storage.Chain, consensus.Consensus, error) {
	cs, err := buildConsensus()
	if err != nil {
		return nil, nil, err
	}
	chain, err := storage.Open(dataDirFlag, cs)
	if err != nil {
		return nil, nil, fmt.Errorf("open chain: %w", err)
	}
	chain.SetMetrics(monitoring.GetGlobalMetrics())
	return chain, cs, nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	chain, _, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	tip, err := chain.GetLastBlock()
	if err != nil {
		return fmt.Errorf("read tip: %w", err)
	}
	hash := tip.Header.Hash()
	monitoring.Infof("chain opened at %s, tip %s", dataDirFlag, hash)
	return nil
}

func runMine(cmd *cobra.Command, args []string) error {
	if config.ConsensusMode(consensusFlag) != config.ConsensusPoW {
		return fmt.Errorf("mine requires --consensus pow")
	}

	chain, _, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mined := 0
	for countFlag == 0 || mined < countFlag {
		block, err := chain.GenerateBlock(ctx, types.Transactions{types.DummyTransaction{}})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("mine block: %w", err)
		}
		hash := block.Header.Hash()
		mined++
		monitoring.Infof("mined block %s", hash)
	}
	monitoring.Infof("mining stopped after %d blocks", mined)
	return nil
}

func pubKeyArray(priv ed25519.PrivateKey) [32]byte {
	var key [32]byte
	copy(key[:], priv.Public().(ed25519.PublicKey))
	return key
}

func validatorKeyPath() string {
	return filepath.Join(dataDirFlag, "validator.key")
}

func loadOrGenerateValidatorKey() (ed25519.PrivateKey, error) {
	if data, err := os.ReadFile(validatorKeyPath()); err == nil {
		if len(data) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("validator key file is malformed")
		}
		return ed25519.PrivateKey(data), nil
	}

	if err := os.MkdirAll(dataDirFlag, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate validator key: %w", err)
	}
	if err := os.WriteFile(validatorKeyPath(), priv, 0o600); err != nil {
		return nil, fmt.Errorf("persist validator key: %w", err)
	}
	return priv, nil
}

func runStakeAddValidator(cmd *cobra.Command, args []string) error {
	if config.ConsensusMode(consensusFlag) != config.ConsensusPoS {
		return fmt.Errorf("stake add-validator requires --consensus pos")
	}

	chain, cs, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	priv, err := loadOrGenerateValidatorKey()
	if err != nil {
		return err
	}

	p := cs.(*pos.PoS)
	p.Metrics = monitoring.GetGlobalMetrics()
	p.AddValidator(priv, stakeFlag)

	if err := chain.PersistConsensusState(); err != nil {
		return fmt.Errorf("persist validator registration: %w", err)
	}

	pub := priv.Public().(ed25519.PublicKey)
	monitoring.Infof("registered validator %s with stake %d", hex.EncodeToString(pub), stakeFlag)
	return nil
}

func runStakePropose(cmd *cobra.Command, args []string) error {
	if config.ConsensusMode(consensusFlag) != config.ConsensusPoS {
		return fmt.Errorf("stake propose requires --consensus pos")
	}

	chain, cs, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	priv, err := loadOrGenerateValidatorKey()
	if err != nil {
		return err
	}
	p := cs.(*pos.PoS)
	p.Metrics = monitoring.GetGlobalMetrics()
	if stake, registered := p.State.CurValidators[pubKeyArray(priv)]; registered {
		p.AddValidator(priv, stake)
	} else {
		return fmt.Errorf("no stake registered for this node's validator key; run 'stake add-validator' first")
	}

	signer, err := keys.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generate transaction signer: %w", err)
	}
	tx := &types.PoSTransaction{Kind: types.KindStake, To: "self", Amount: 1}
	if err := tx.Sign(signer); err != nil {
		return err
	}

	block, err := chain.GenerateBlock(context.Background(), types.Transactions{tx})
	if err != nil {
		return fmt.Errorf("propose block: %w", err)
	}
	hash := block.Header.Hash()
	monitoring.Infof("proposed block %s by signer fingerprint %x", hash, signer.PublicKey().Hash160())
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	chain, _, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	if err := chain.VerifyChain(); err != nil {
		return fmt.Errorf("chain verification failed: %w", err)
	}
	monitoring.Infof("chain store at %s verified", dataDirFlag)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	chain, _, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	height, err := chain.Height()
	if err != nil {
		return fmt.Errorf("read height: %w", err)
	}
	tip, err := chain.GetLastBlock()
	if err != nil {
		return fmt.Errorf("read tip: %w", err)
	}
	hash := tip.Header.Hash()

	fmt.Printf("Height:    %d\n", height)
	fmt.Printf("Tip hash:  %s\n", hash)
	fmt.Printf("Timestamp: %d\n", tip.Header.Timestamp)
	return nil
}
