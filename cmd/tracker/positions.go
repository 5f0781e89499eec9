package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
	"positionScope/internal/model"
)

func runPositionsList(cmd *cobra.Command, _ []string) error {
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
	withPrices, _ := cmd.Flags().GetBool("prices")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	logger.Info("list positions",
		zap.String("chain", stack.preset.Name),
		zap.String("owner", owner.Hex()),
		zap.Bool("prices", withPrices),
	)

	list, err := stack.tracker.List(ctx, owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no positions found")
		return nil
	}

	if withPrices {
		stack.oracle.USDPrices(ctx, positionTokens(list))
	}

	shown := 0
	for _, position := range list {
		var value model.PositionValue
		if withPrices {
			value, err = stack.tracker.ValueWithPrices(ctx, position, stack.oracle)
		} else {
			value, err = stack.tracker.Value(ctx, position)
		}
		if err != nil {
			logger.Warn("skip position",
				zap.String("token_id", position.TokenID.String()),
				zap.Error(err))
			continue
		}
		printPosition(value, withPrices)
		shown++
	}

	fmt.Printf("%d of %d positions shown\n", shown, len(list))
	return nil
}

// positionTokens collects the token addresses of every position leg.
// Duplicates are fine, the oracle batch dedupes.
func positionTokens(list []model.PositionInfo) []common.Address {
	tokens := make([]common.Address, 0, len(list)*2)
	for _, position := range list {
		tokens = append(tokens,
			common.HexToAddress(position.Token0.Address),
			common.HexToAddress(position.Token1.Address),
		)
	}
	return tokens
}

func printPosition(value model.PositionValue, withPrices bool) {
	position := value.Position

	fmt.Printf("#%s %s/%s %.2f%% pool=%s\n",
		position.TokenID,
		position.Token0.Symbol,
		position.Token1.Symbol,
		float64(position.FeeTier)/10000,
		position.PoolAddress,
	)
	fmt.Printf("  range [%d, %d] liquidity %s\n",
		position.TickLower,
		position.TickUpper,
		position.Liquidity,
	)
	fmt.Printf("  amounts %s %s + %s %s\n",
		value.Amount0Decimal(), position.Token0.Symbol,
		value.Amount1Decimal(), position.Token1.Symbol,
	)
	fmt.Printf("  fees    %s %s + %s %s\n",
		value.Fees0Decimal(), position.Token0.Symbol,
		value.Fees1Decimal(), position.Token1.Symbol,
	)

	if !withPrices {
		return
	}
	fmt.Printf("  prices  %s=%s %s=%s total=%s\n",
		position.Token0.Symbol, formatOptionalUSD(value.Price0USD),
		position.Token1.Symbol, formatOptionalUSD(value.Price1USD),
		formatOptionalUSD(value.TotalUSD),
	)
}

func formatOptionalUSD(price *float64) string {
	if price == nil {
		return "unknown"
	}
	return formatUSD(*price)
}

func formatUSD(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
