package dex

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/model"
)

// Pools opens pool callers by address.
type Pools struct {
	caller Caller
}

func NewPools(caller Caller) *Pools {
	return &Pools{caller: caller}
}

// StateOf returns the live state of the pool at the address.
func (p *Pools) StateOf(ctx context.Context, address common.Address) (model.PoolState, error) {
	return NewPool(p.caller, address).State(ctx)
}

// Token0Of returns token0 of the pool at the address.
func (p *Pools) Token0Of(ctx context.Context, address common.Address) (common.Address, error) {
	return NewPool(p.caller, address).Token0(ctx)
}

// Token1Of returns token1 of the pool at the address.
func (p *Pools) Token1Of(ctx context.Context, address common.Address) (common.Address, error) {
	return NewPool(p.caller, address).Token1(ctx)
}

// TokenDirectory serves token metadata through a cache. Results are
// cached even when fields fell back to defaults.
type TokenDirectory struct {
	caller Caller
	cache  *TokenInfoCache
	logger *zap.Logger
}

func NewTokenDirectory(caller Caller, logger *zap.Logger) *TokenDirectory {
	return &TokenDirectory{caller: caller, cache: NewTokenInfoCache(), logger: logger}
}

// TokenInfo returns metadata for the token, fetching on cache miss.
func (d *TokenDirectory) TokenInfo(ctx context.Context, token common.Address) model.TokenInfo {
	if info, ok := d.cache.Get(token); ok {
		return info
	}
	info := FetchTokenInfo(ctx, d.caller, token, d.logger)
	d.cache.Set(token, info)
	return info
}
