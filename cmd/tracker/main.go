package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"positionScope/internal/chain"
	"positionScope/internal/config"
	"positionScope/internal/dex"
	"positionScope/internal/positions"
	"positionScope/internal/pricing"
)

func main() {
	root := &cobra.Command{
		Use:          "tracker",
		Short:        "Uniswap v3 position tracker",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Inspect liquidity positions",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List and value the positions of an owner",
		RunE:  runPositionsList,
	}
	addChainFlags(listCmd.Flags())
	addOracleFlags(listCmd.Flags())
	listCmd.Flags().String("owner", "", "owner address")
	listCmd.Flags().Bool("prices", false, "resolve USD prices for each position")
	positionsCmd.AddCommand(listCmd)
	root.AddCommand(positionsCmd)

	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Resolve USD prices",
	}
	priceGetCmd := &cobra.Command{
		Use:   "get",
		Short: "Resolve the USD price of one token",
		RunE:  runPriceGet,
	}
	addChainFlags(priceGetCmd.Flags())
	addOracleFlags(priceGetCmd.Flags())
	priceGetCmd.Flags().String("token", "", "token symbol or address")
	priceCmd.AddCommand(priceGetCmd)
	root.AddCommand(priceCmd)

	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Resolve USD prices in bulk",
	}
	pricesGetCmd := &cobra.Command{
		Use:   "get",
		Short: "Resolve USD prices for several tokens",
		RunE:  runPricesGet,
	}
	addChainFlags(pricesGetCmd.Flags())
	addOracleFlags(pricesGetCmd.Flags())
	pricesGetCmd.Flags().StringSlice("token", nil, "token symbols or addresses (repeatable)")
	pricesCmd.AddCommand(pricesGetCmd)
	root.AddCommand(pricesCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture valued positions to storage",
		RunE:  runSnapshot,
	}
	addChainFlags(snapshotCmd.Flags())
	addOracleFlags(snapshotCmd.Flags())
	snapshotCmd.Flags().String("owner", "", "owner address")
	snapshotCmd.Flags().String("out", "./data/snapshots.jsonl", "output JSONL path, empty to disable")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN, empty to disable")
	root.AddCommand(snapshotCmd)

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the native balance of an address",
		RunE:  runBalance,
	}
	addChainFlags(balanceCmd.Flags())
	balanceCmd.Flags().String("owner", "", "address to query")
	root.AddCommand(balanceCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show RPC connectivity and chain state",
		RunE:  runStatus,
	}
	addChainFlags(statusCmd.Flags())
	root.AddCommand(statusCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "chain RPC URL")
	flags.String("chain", "ethereum", "chain preset (ethereum, arbitrum)")
	flags.String("position-manager", "", "position manager address override")
	flags.String("factory", "", "factory address override")
	flags.Duration("call-timeout", 10*time.Second, "per-call RPC timeout")
	flags.Int("max-retries", 3, "retry attempts per contract call")
	flags.Duration("retry-backoff", 300*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func addOracleFlags(flags *pflag.FlagSet) {
	flags.String("wrapped-native", "", "wrapped native token address override")
	flags.StringSlice("stablecoins", nil, "stablecoin addresses in preference order")
	flags.String("quote-ids", "", "extra address=quote-id mappings (comma-separated)")
	flags.String("quote-base-url", "", "quote API base URL")
	flags.Float64("quote-rate", 10, "quote API requests per second")
	flags.Int("quote-burst", 1, "quote API burst size")
	flags.Duration("cache-ttl", 300*time.Second, "price cache TTL")
	flags.Int("workers", 4, "concurrent price lookups")
}

// stack bundles the components wired behind one RPC connection.
type stack struct {
	cfg     config.Config
	preset  config.ChainPreset
	client  *chain.Client
	tracker *positions.Tracker
	tokens  pricing.ChainTokens
	oracle  *pricing.Oracle
}

func buildStack(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stack, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	preset, err := config.ResolveChain(cfg)
	if err != nil {
		return nil, err
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	caller := dex.NewRetryCaller(dex.NewTimeoutCaller(client, cfg.CallTimeout), cfg.MaxRetries, cfg.RetryBackoff)
	manager := dex.NewPositionManager(caller, preset.PositionManager)
	factory := dex.NewFactory(caller, preset.Factory)
	pools := dex.NewPools(caller)
	directory := dex.NewTokenDirectory(caller, logger)

	tracker := positions.NewTracker(preset.Name, manager, factory, pools, directory, logger)

	tokens := pricing.TokensFor(preset.Name, cfg.WrappedNative, cfg.Stablecoins, cfg.QuoteIDs)
	oracle := pricing.NewOracle(pricing.OracleConfig{
		Tokens:    tokens,
		Cache:     pricing.NewCache(cfg.CacheTTL),
		Quotes:    pricing.NewCoinGeckoClient(cfg.QuoteBaseURL),
		Resolver:  pricing.NewResolver(factory, pools, directory, logger),
		RateLimit: rate.Limit(cfg.QuoteRatePerSec),
		Burst:     cfg.QuoteBurst,
		Workers:   cfg.Workers,
	}, logger)

	return &stack{
		cfg:     cfg,
		preset:  preset,
		client:  client,
		tracker: tracker,
		tokens:  tokens,
		oracle:  oracle,
	}, nil
}

func (s *stack) Close() {
	s.client.Close()
}

func ownerAddress(cfg config.Config) (common.Address, error) {
	if cfg.Owner == "" {
		return common.Address{}, fmt.Errorf("owner address is required")
	}
	if !common.IsHexAddress(cfg.Owner) {
		return common.Address{}, fmt.Errorf("invalid owner address: %s", cfg.Owner)
	}
	return common.HexToAddress(cfg.Owner), nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
