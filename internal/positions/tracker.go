package positions

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/dex"
	"positionScope/internal/model"
)

// PositionReader reads position NFTs from the manager contract.
type PositionReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (uint64, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (*big.Int, error)
	PositionAt(ctx context.Context, tokenID *big.Int) (dex.Position, error)
}

// PoolRegistry resolves the pool for a token pair at a fee tier.
type PoolRegistry interface {
	PoolFor(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error)
}

// PoolStates reads live pool state by address.
type PoolStates interface {
	StateOf(ctx context.Context, pool common.Address) (model.PoolState, error)
}

// TokenInfos serves token metadata by address.
type TokenInfos interface {
	TokenInfo(ctx context.Context, token common.Address) model.TokenInfo
}

// Tracker enumerates and values the liquidity positions of an owner.
type Tracker struct {
	chain    string
	manager  PositionReader
	registry PoolRegistry
	pools    PoolStates
	tokens   TokenInfos
	logger   *zap.Logger
}

func NewTracker(chain string, manager PositionReader, registry PoolRegistry, pools PoolStates, tokens TokenInfos, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		chain:    chain,
		manager:  manager,
		registry: registry,
		pools:    pools,
		tokens:   tokens,
		logger:   logger,
	}
}

// List enumerates the owner's positions. A position that fails to read
// or decode is logged and skipped; the rest of the listing proceeds.
func (t *Tracker) List(ctx context.Context, owner common.Address) ([]model.PositionInfo, error) {
	count, err := t.manager.BalanceOf(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s: %w", owner.Hex(), err)
	}

	positions := make([]model.PositionInfo, 0, count)
	for i := uint64(0); i < count; i++ {
		tokenID, err := t.manager.TokenOfOwnerByIndex(ctx, owner, i)
		if err != nil {
			t.logger.Warn("position id lookup failed", zap.Uint64("index", i), zap.Error(err))
			continue
		}
		info, err := t.describe(ctx, tokenID)
		if err != nil {
			t.logger.Warn("position read failed", zap.String("token_id", tokenID.String()), zap.Error(err))
			continue
		}
		positions = append(positions, info)
	}
	return positions, nil
}

// describe reads one position tuple and resolves its tokens and pool.
// A failed pool lookup leaves PoolAddress empty; valuation then works
// only for the zero-liquidity case.
func (t *Tracker) describe(ctx context.Context, tokenID *big.Int) (model.PositionInfo, error) {
	raw, err := t.manager.PositionAt(ctx, tokenID)
	if err != nil {
		return model.PositionInfo{}, err
	}

	info := model.PositionInfo{
		Chain:       t.chain,
		TokenID:     tokenID,
		Token0:      t.tokens.TokenInfo(ctx, raw.Token0),
		Token1:      t.tokens.TokenInfo(ctx, raw.Token1),
		FeeTier:     raw.Fee,
		TickLower:   raw.TickLower,
		TickUpper:   raw.TickUpper,
		Liquidity:   raw.Liquidity,
		TokensOwed0: raw.TokensOwed0,
		TokensOwed1: raw.TokensOwed1,
	}

	pool, err := t.registry.PoolFor(ctx, raw.Token0, raw.Token1, raw.Fee)
	if err != nil {
		t.logger.Debug("pool lookup failed",
			zap.String("token_id", tokenID.String()),
			zap.Uint32("fee", raw.Fee),
			zap.Error(err))
	} else {
		info.PoolAddress = pool.Hex()
	}
	return info, nil
}
