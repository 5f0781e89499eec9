package model

import "math/big"

// PoolState holds the live pool fields a valuation reads. It is fetched
// fresh for every valuation and never cached.
type PoolState struct {
	SqrtPriceX96 *big.Int
	Tick         int32
}
