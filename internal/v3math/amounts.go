package v3math

import "math/big"

// Amount0Delta returns the token0 amount held by liquidity between two
// sqrt ratios: L * 2^96 * (upper - lower) / (upper * lower), floored.
// The ratio arguments may be passed in either order.
func Amount0Delta(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtA, sqrtB)
	num := new(big.Int).Lsh(liquidity, 96)
	num.Mul(num, new(big.Int).Sub(upper, lower))
	den := new(big.Int).Mul(upper, lower)
	return num.Div(num, den)
}

// Amount1Delta returns the token1 amount held by liquidity between two
// sqrt ratios: L * (upper - lower) / 2^96, floored.
func Amount1Delta(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	lower, upper := sortRatios(sqrtA, sqrtB)
	amount := new(big.Int).Mul(liquidity, new(big.Int).Sub(upper, lower))
	return amount.Rsh(amount, 96)
}

// Token0Price returns the price of one token0 unit in token1 units as an
// exact rational: sqrtPriceX96^2 * 10^decimals0 / (2^192 * 10^decimals1).
func Token0Price(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) *big.Rat {
	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	num.Mul(num, pow10(decimals0))
	den := new(big.Int).Mul(q192, pow10(decimals1))
	return new(big.Rat).SetFrac(num, den)
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func sortRatios(a, b *big.Int) (lower, upper *big.Int) {
	if a.Cmp(b) <= 0 {
		return a, b
	}
	return b, a
}
