package model

import "time"

// PositionSnapshot is one valued position flattened for storage. Token
// amounts are decimal strings already scaled by each token's decimals;
// liquidity stays raw.
type PositionSnapshot struct {
	ChainID     uint64    `json:"chain_id"`
	Chain       string    `json:"chain"`
	TokenID     string    `json:"token_id"`
	PoolAddress string    `json:"pool_address,omitempty"`
	Token0      TokenInfo `json:"token0"`
	Token1      TokenInfo `json:"token1"`
	FeeTier     uint32    `json:"fee_tier"`
	TickLower   int32     `json:"tick_lower"`
	TickUpper   int32     `json:"tick_upper"`
	Liquidity   string    `json:"liquidity"`
	Amount0     string    `json:"amount0"`
	Amount1     string    `json:"amount1"`
	Fees0       string    `json:"fees0"`
	Fees1       string    `json:"fees1"`
	Price0USD   *float64  `json:"price0_usd,omitempty"`
	Price1USD   *float64  `json:"price1_usd,omitempty"`
	TotalUSD    *float64  `json:"total_usd,omitempty"`
	CapturedAt  time.Time `json:"captured_at"`
}
