package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
)

func runPriceGet(cmd *cobra.Command, _ []string) error {
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

	query, _ := cmd.Flags().GetString("token")
	if query == "" {
		return fmt.Errorf("token is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	token, ok := stack.tokens.Resolve(query)
	if !ok {
		return fmt.Errorf("unknown token %q", query)
	}

	logger.Info("price lookup",
		zap.String("chain", stack.preset.Name),
		zap.String("token", token.Hex()),
	)

	price, err := stack.oracle.USDPrice(ctx, token)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", token.Hex(), formatUSD(price))
	return nil
}

func runPricesGet(cmd *cobra.Command, _ []string) error {
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

	queries, _ := cmd.Flags().GetStringSlice("token")
	if len(queries) == 0 {
		return fmt.Errorf("at least one token is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	tokens := make([]common.Address, 0, len(queries))
	for _, query := range queries {
		token, ok := stack.tokens.Resolve(query)
		if !ok {
			return fmt.Errorf("unknown token %q", query)
		}
		tokens = append(tokens, token)
	}

	logger.Info("bulk price lookup",
		zap.String("chain", stack.preset.Name),
		zap.Int("tokens", len(tokens)),
	)

	prices := stack.oracle.USDPrices(ctx, tokens)

	for i, query := range queries {
		if price, ok := prices[tokens[i]]; ok {
			fmt.Printf("%-14s %s\n", query, formatUSD(price))
		} else {
			fmt.Printf("%-14s unknown\n", query)
		}
	}
	return nil
}
