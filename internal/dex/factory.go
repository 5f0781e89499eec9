package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNoPool reports that the factory has no pool for a pair at a fee tier.
var ErrNoPool = errors.New("no pool at fee tier")

// Factory reads the v3 factory contract.
type Factory struct {
	caller  Caller
	address common.Address
}

func NewFactory(caller Caller, address common.Address) *Factory {
	return &Factory{caller: caller, address: address}
}

// PoolFor returns the pool address for a token pair at a fee tier, or
// ErrNoPool when the factory reports the zero address.
func (f *Factory) PoolFor(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	parsed, err := factoryABIInstance()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, f.caller, f.address, parsed, "getPool", tokenA, tokenB, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: fee %d", ErrNoPool, fee)
	}
	return pool, nil
}
