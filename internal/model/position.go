package model

import "math/big"

// PositionInfo describes one liquidity position NFT together with the
// pool and token metadata needed to value it.
type PositionInfo struct {
	Chain       string
	TokenID     *big.Int
	PoolAddress string
	Token0      TokenInfo
	Token1      TokenInfo
	FeeTier     uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}
