package positions

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/model"
	"positionScope/internal/v3math"
)

// PriceSource resolves a token's USD price.
type PriceSource interface {
	USDPrice(ctx context.Context, token common.Address) (float64, error)
}

// Value computes the position's current token composition. Contract
// fee counters pass through unchanged. Zero-liquidity positions return
// fees only, without touching the pool; otherwise pool state is read
// fresh on every call.
func (t *Tracker) Value(ctx context.Context, position model.PositionInfo) (model.PositionValue, error) {
	value := model.PositionValue{
		Position: position,
		Amount0:  new(big.Int),
		Amount1:  new(big.Int),
		Fees0:    owedOrZero(position.TokensOwed0),
		Fees1:    owedOrZero(position.TokensOwed1),
	}

	if position.Liquidity == nil || position.Liquidity.Sign() == 0 {
		return value, nil
	}

	lower, err := v3math.SqrtRatioAtTick(position.TickLower)
	if err != nil {
		return model.PositionValue{}, fmt.Errorf("position %s lower tick: %w", tokenIDString(position), err)
	}
	upper, err := v3math.SqrtRatioAtTick(position.TickUpper)
	if err != nil {
		return model.PositionValue{}, fmt.Errorf("position %s upper tick: %w", tokenIDString(position), err)
	}
	if position.TickLower >= position.TickUpper {
		return model.PositionValue{}, fmt.Errorf("position %s: inverted tick range [%d, %d]", tokenIDString(position), position.TickLower, position.TickUpper)
	}

	if position.PoolAddress == "" {
		return model.PositionValue{}, fmt.Errorf("position %s: no pool", tokenIDString(position))
	}
	state, err := t.pools.StateOf(ctx, common.HexToAddress(position.PoolAddress))
	if err != nil {
		return model.PositionValue{}, fmt.Errorf("pool state %s: %w", position.PoolAddress, err)
	}
	if state.SqrtPriceX96 == nil || state.SqrtPriceX96.Sign() == 0 {
		return model.PositionValue{}, fmt.Errorf("pool %s: zero sqrt price", position.PoolAddress)
	}

	current := state.SqrtPriceX96
	switch {
	case current.Cmp(lower) <= 0:
		// Price below the range, all value sits in token0.
		value.Amount0 = v3math.Amount0Delta(lower, upper, position.Liquidity)
	case current.Cmp(upper) >= 0:
		// Price above the range, all value sits in token1.
		value.Amount1 = v3math.Amount1Delta(lower, upper, position.Liquidity)
	default:
		value.Amount0 = v3math.Amount0Delta(current, upper, position.Liquidity)
		value.Amount1 = v3math.Amount1Delta(lower, current, position.Liquidity)
	}
	return value, nil
}

// ValueWithPrices values the position and enriches it with USD prices.
// A missing price leaves the corresponding field nil; the total is
// filled only when both sides priced.
func (t *Tracker) ValueWithPrices(ctx context.Context, position model.PositionInfo, prices PriceSource) (model.PositionValue, error) {
	value, err := t.Value(ctx, position)
	if err != nil {
		return model.PositionValue{}, err
	}

	if price, err := prices.USDPrice(ctx, common.HexToAddress(position.Token0.Address)); err == nil {
		value.Price0USD = &price
	} else {
		t.logger.Debug("token0 price unavailable", zap.String("token", position.Token0.Address), zap.Error(err))
	}
	if price, err := prices.USDPrice(ctx, common.HexToAddress(position.Token1.Address)); err == nil {
		value.Price1USD = &price
	} else {
		t.logger.Debug("token1 price unavailable", zap.String("token", position.Token1.Address), zap.Error(err))
	}

	if value.Price0USD != nil && value.Price1USD != nil {
		side0 := model.AmountFloat(new(big.Int).Add(value.Amount0, value.Fees0), position.Token0.Decimals) * (*value.Price0USD)
		side1 := model.AmountFloat(new(big.Int).Add(value.Amount1, value.Fees1), position.Token1.Decimals) * (*value.Price1USD)
		total := side0 + side1
		value.TotalUSD = &total
	}
	return value, nil
}

func owedOrZero(owed *big.Int) *big.Int {
	if owed == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(owed)
}

func tokenIDString(position model.PositionInfo) string {
	if position.TokenID == nil {
		return "?"
	}
	return position.TokenID.String()
}
