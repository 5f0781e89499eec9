package model

import (
	"math/big"
	"time"
)

// PositionValue is the valued composition of a position. Amounts and fees
// are raw integer token units; the USD fields stay nil until a price
// lookup succeeds.
type PositionValue struct {
	Position  PositionInfo
	Amount0   *big.Int
	Amount1   *big.Int
	Fees0     *big.Int
	Fees1     *big.Int
	Price0USD *float64
	Price1USD *float64
	TotalUSD  *float64
}

// Amount0Decimal returns amount0 scaled by token0's decimals.
func (v PositionValue) Amount0Decimal() string {
	return FormatAmount(v.Amount0, v.Position.Token0.Decimals)
}

// Amount1Decimal returns amount1 scaled by token1's decimals.
func (v PositionValue) Amount1Decimal() string {
	return FormatAmount(v.Amount1, v.Position.Token1.Decimals)
}

// Fees0Decimal returns the unclaimed token0 fees scaled by decimals.
func (v PositionValue) Fees0Decimal() string {
	return FormatAmount(v.Fees0, v.Position.Token0.Decimals)
}

// Fees1Decimal returns the unclaimed token1 fees scaled by decimals.
func (v PositionValue) Fees1Decimal() string {
	return FormatAmount(v.Fees1, v.Position.Token1.Decimals)
}

// Snapshot flattens the valued position into a storable row.
func (v PositionValue) Snapshot(chainID uint64, capturedAt time.Time) PositionSnapshot {
	snap := PositionSnapshot{
		ChainID:     chainID,
		Chain:       v.Position.Chain,
		PoolAddress: v.Position.PoolAddress,
		Token0:      v.Position.Token0,
		Token1:      v.Position.Token1,
		FeeTier:     v.Position.FeeTier,
		TickLower:   v.Position.TickLower,
		TickUpper:   v.Position.TickUpper,
		Liquidity:   bigString(v.Position.Liquidity),
		Amount0:     v.Amount0Decimal(),
		Amount1:     v.Amount1Decimal(),
		Fees0:       v.Fees0Decimal(),
		Fees1:       v.Fees1Decimal(),
		Price0USD:   v.Price0USD,
		Price1USD:   v.Price1USD,
		TotalUSD:    v.TotalUSD,
		CapturedAt:  capturedAt.UTC(),
	}
	if v.Position.TokenID != nil {
		snap.TokenID = v.Position.TokenID.String()
	}
	return snap
}

func bigString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
