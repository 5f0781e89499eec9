package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/model"
)

// Pool reads a v3 pool contract.
type Pool struct {
	caller  Caller
	address common.Address
}

func NewPool(caller Caller, address common.Address) *Pool {
	return &Pool{caller: caller, address: address}
}

// Address returns the pool contract address.
func (p *Pool) Address() common.Address {
	return p.address
}

// State returns the pool's current sqrt price and tick from slot0.
func (p *Pool) State(ctx context.Context) (model.PoolState, error) {
	parsed, err := v3PoolABIInstance()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, parsed, "slot0")
	if err != nil {
		return model.PoolState{}, err
	}
	if len(values) < 2 {
		return model.PoolState{}, fmt.Errorf("slot0: unexpected tuple size %d", len(values))
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("slot0 sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}
	return model.PoolState{SqrtPriceX96: sqrt, Tick: tick}, nil
}

// Token0 returns the pool's token0 address.
func (p *Pool) Token0(ctx context.Context) (common.Address, error) {
	return p.tokenAddress(ctx, "token0")
}

// Token1 returns the pool's token1 address.
func (p *Pool) Token1(ctx context.Context) (common.Address, error) {
	return p.tokenAddress(ctx, "token1")
}

func (p *Pool) tokenAddress(ctx context.Context, method string) (common.Address, error) {
	parsed, err := v3PoolABIInstance()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, parsed, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", method, err)
	}
	return addr, nil
}
