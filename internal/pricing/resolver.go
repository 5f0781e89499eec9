package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/model"
	"positionScope/internal/v3math"
)

// PoolRegistry finds pools for token pairs.
type PoolRegistry interface {
	PoolFor(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error)
}

// PoolReader reads pool tokens and state.
type PoolReader interface {
	StateOf(ctx context.Context, address common.Address) (model.PoolState, error)
	Token0Of(ctx context.Context, address common.Address) (common.Address, error)
	Token1Of(ctx context.Context, address common.Address) (common.Address, error)
}

// TokenInfos resolves token metadata.
type TokenInfos interface {
	TokenInfo(ctx context.Context, token common.Address) model.TokenInfo
}

// Resolver derives spot prices from v3 pool state.
type Resolver struct {
	registry PoolRegistry
	pools    PoolReader
	tokens   TokenInfos
	logger   *zap.Logger
}

func NewResolver(registry PoolRegistry, pools PoolReader, tokens TokenInfos, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{registry: registry, pools: pools, tokens: tokens, logger: logger}
}

// PairPrice returns the price of tokenA denominated in tokenB, read
// from the first fee tier that has a usable pool.
func (r *Resolver) PairPrice(ctx context.Context, tokenA, tokenB common.Address, feeTiers []uint32) (float64, error) {
	for _, fee := range feeTiers {
		pool, err := r.registry.PoolFor(ctx, tokenA, tokenB, fee)
		if err != nil {
			r.logger.Debug("no pool at tier",
				zap.String("tokenA", tokenA.Hex()),
				zap.String("tokenB", tokenB.Hex()),
				zap.Uint32("fee", fee),
				zap.Error(err))
			continue
		}
		price, err := r.poolPrice(ctx, pool, tokenA)
		if err != nil {
			r.logger.Debug("unusable pool price",
				zap.String("pool", pool.Hex()),
				zap.Uint32("fee", fee),
				zap.Error(err))
			continue
		}
		return price, nil
	}
	return 0, fmt.Errorf("%w: no pool price for %s/%s", ErrPriceUnavailable, tokenA.Hex(), tokenB.Hex())
}

// poolPrice reads the pool's spot price and orients it so the result
// is denominated in the pool's other token per one tokenA.
func (r *Resolver) poolPrice(ctx context.Context, pool, tokenA common.Address) (float64, error) {
	token0, err := r.pools.Token0Of(ctx, pool)
	if err != nil {
		return 0, fmt.Errorf("token0: %w", err)
	}
	token1, err := r.pools.Token1Of(ctx, pool)
	if err != nil {
		return 0, fmt.Errorf("token1: %w", err)
	}
	state, err := r.pools.StateOf(ctx, pool)
	if err != nil {
		return 0, fmt.Errorf("slot0: %w", err)
	}
	if state.SqrtPriceX96 == nil || state.SqrtPriceX96.Sign() == 0 {
		return 0, fmt.Errorf("pool %s has zero sqrt price", pool.Hex())
	}

	info0 := r.tokens.TokenInfo(ctx, token0)
	info1 := r.tokens.TokenInfo(ctx, token1)

	price := v3math.Token0Price(state.SqrtPriceX96, info0.Decimals, info1.Decimals)
	if token0 != tokenA {
		if price.Sign() == 0 {
			return 0, fmt.Errorf("pool %s has zero token0 price", pool.Hex())
		}
		price.Inv(price)
	}

	f, _ := price.Float64()
	if f <= 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("pool %s price out of range", pool.Hex())
	}
	return f, nil
}
