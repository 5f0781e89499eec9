package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
	"positionScope/internal/model"
	"positionScope/internal/storage"
	"positionScope/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
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
	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("at least one of out or pg-dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	var sinks []storage.Storage
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	chainID := stack.preset.ChainID
	if id, err := stack.client.GetChainID(ctx); err == nil {
		if chainID != 0 && id.Uint64() != chainID {
			logger.Warn("rpc chain id differs from preset",
				zap.Uint64("preset", chainID),
				zap.Uint64("rpc", id.Uint64()))
		}
		chainID = id.Uint64()
	} else {
		logger.Warn("chain id lookup failed", zap.Error(err))
	}

	if store != nil {
		if last, ok, err := store.LastCaptureTime(ctx, chainID); err == nil && ok {
			logger.Info("previous capture", zap.Time("captured_at", last))
		}
	}

	logger.Info("snapshot start",
		zap.String("chain", stack.preset.Name),
		zap.Uint64("chain_id", chainID),
		zap.String("owner", owner.Hex()),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	list, err := stack.tracker.List(ctx, owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		logger.Info("no positions to snapshot")
		return nil
	}

	stack.oracle.USDPrices(ctx, positionTokens(list))

	capturedAt := time.Now().UTC()
	snapshots := make([]model.PositionSnapshot, 0, len(list))
	for _, position := range list {
		value, err := stack.tracker.ValueWithPrices(ctx, position, stack.oracle)
		if err != nil {
			logger.Warn("skip position",
				zap.String("token_id", position.TokenID.String()),
				zap.Error(err))
			continue
		}
		snapshots = append(snapshots, value.Snapshot(chainID, capturedAt))
	}

	for _, sink := range sinks {
		if err := sink.PutSnapshotBatch(ctx, snapshots); err != nil {
			return err
		}
	}

	logger.Info("snapshot complete",
		zap.Int("positions", len(list)),
		zap.Int("stored", len(snapshots)),
	)
	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
