package v3math

import (
	"math/big"
	"testing"
)

func mustRatio(t *testing.T, tick int32) *big.Int {
	t.Helper()
	ratio, err := SqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("tick %d: %v", tick, err)
	}
	return ratio
}

func TestAmountDeltasOrderIndependent(t *testing.T) {
	lower := mustRatio(t, -100)
	upper := mustRatio(t, 100)
	liquidity := big.NewInt(1_000_000)

	a0 := Amount0Delta(lower, upper, liquidity)
	b0 := Amount0Delta(upper, lower, liquidity)
	if a0.Cmp(b0) != 0 {
		t.Fatalf("amount0 order dependent: %s vs %s", a0.String(), b0.String())
	}

	a1 := Amount1Delta(lower, upper, liquidity)
	b1 := Amount1Delta(upper, lower, liquidity)
	if a1.Cmp(b1) != 0 {
		t.Fatalf("amount1 order dependent: %s vs %s", a1.String(), b1.String())
	}
}

func TestAmountDeltasSymmetricRange(t *testing.T) {
	// A range centered on the current price holds equal raw amounts of
	// both tokens when the decimals match.
	lower := mustRatio(t, -100)
	upper := mustRatio(t, 100)
	current := mustRatio(t, 0)
	liquidity := big.NewInt(1_000_000)

	amount0 := Amount0Delta(current, upper, liquidity)
	amount1 := Amount1Delta(lower, current, liquidity)
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		t.Fatalf("expected positive amounts, got %s and %s", amount0.String(), amount1.String())
	}
	if amount0.Cmp(amount1) != 0 {
		t.Fatalf("amounts differ: %s vs %s", amount0.String(), amount1.String())
	}
	if want := big.NewInt(4987); amount0.Cmp(want) != 0 {
		t.Fatalf("amount0: got %s want %s", amount0.String(), want.String())
	}
}

func TestAmountDeltasZeroWidth(t *testing.T) {
	ratio := mustRatio(t, 100)
	liquidity := big.NewInt(1_000_000)
	if got := Amount0Delta(ratio, ratio, liquidity); got.Sign() != 0 {
		t.Fatalf("zero-width amount0: got %s", got.String())
	}
	if got := Amount1Delta(ratio, ratio, liquidity); got.Sign() != 0 {
		t.Fatalf("zero-width amount1: got %s", got.String())
	}
}

func TestToken0Price(t *testing.T) {
	// sqrt ratio of 2 means token0 trades at 4x token1.
	double := new(big.Int).Lsh(Q96, 1)
	if got := Token0Price(double, 18, 18); got.Cmp(big.NewRat(4, 1)) != 0 {
		t.Fatalf("price: got %s want 4", got.RatString())
	}

	// A raw ratio of 10^12 cancels a 6 vs 18 decimals gap exactly.
	sqrt := new(big.Int).Mul(Q96, big.NewInt(1_000_000))
	if got := Token0Price(sqrt, 6, 18); got.Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("price: got %s want 1", got.RatString())
	}

	if got := Token0Price(Q96, 18, 18); got.Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("unit price: got %s want 1", got.RatString())
	}
}
