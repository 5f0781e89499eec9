package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/chain"
	"positionScope/internal/config"
	"positionScope/internal/model"
)

func runBalance(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	owner, err := ownerAddress(cfg)
	if err != nil {
		return err
	}
	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	balance, err := client.BalanceAt(ctx, owner)
	if err != nil {
		return fmt.Errorf("balance %s: %w", owner.Hex(), err)
	}

	logger.Debug("balance fetched",
		zap.String("owner", owner.Hex()),
		zap.String("wei", balance.String()),
	)

	fmt.Printf("%s %s\n", owner.Hex(), model.FormatAmount(balance, 18))
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	block, err := client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	header, err := client.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return fmt.Errorf("header %d: %w", block, err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("gas price: %w", err)
	}

	age := time.Since(time.Unix(int64(header.Time), 0)).Round(time.Second)

	fmt.Printf("chain id:  %s\n", chainID)
	fmt.Printf("block:     %d (age %s)\n", block, age)
	fmt.Printf("gas price: %s gwei\n", model.FormatAmount(gasPrice, 9))

	if preset, ok := config.Presets()[strings.ToLower(cfg.Chain)]; ok && preset.ChainID != chainID.Uint64() {
		fmt.Printf("warning: rpc chain id %s does not match %s (%d)\n", chainID, preset.Name, preset.ChainID)
	}
	return nil
}
