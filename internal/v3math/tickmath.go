package v3math

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MinTick and MaxTick bound the ticks a v3 pool can represent.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// ErrTickOutOfRange reports a tick outside [MinTick, MaxTick].
var ErrTickOutOfRange = errors.New("tick out of range")

var (
	// MinSqrtRatio is SqrtRatioAtTick(MinTick).
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is SqrtRatioAtTick(MaxTick).
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	// Q96 is the Q64.96 fixed-point scale, 2^96.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	q192       = new(big.Int).Lsh(big.NewInt(1), 192)
	one        = uint256.NewInt(1)
	roundMask  = uint256.NewInt(0xffffffff)
	maxUint256 = new(uint256.Int).SetAllOne()
	oneX128    = hexUint256("0x100000000000000000000000000000000")

	// tickFactors[i] is sqrt(1.0001^-(2^i)) in unsigned 128.128 fixed
	// point, applied when bit i of |tick| is set.
	tickFactors = [20]*uint256.Int{
		hexUint256("0xfffcb933bd6fad37aa2d162d1a594001"),
		hexUint256("0xfff97272373d413259a46990580e213a"),
		hexUint256("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		hexUint256("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		hexUint256("0xffcb9843d60f6159c9db58835c926644"),
		hexUint256("0xff973b41fa98c081472e6896dfb254c0"),
		hexUint256("0xff2ea16466c96a3843ec78b326b52861"),
		hexUint256("0xfe5dee046a99a2a811c461f1969c3053"),
		hexUint256("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		hexUint256("0xf987a7253ac413176f2b074cf7815e54"),
		hexUint256("0xf3392b0822b70005940c7a398e4b70f3"),
		hexUint256("0xe7159475a2c29b7443b29c7fa6e889d9"),
		hexUint256("0xd097f3bdfd2022b8845ad8f792aa5825"),
		hexUint256("0xa9f746462d870fdf8a65dc1f90e061e5"),
		hexUint256("0x70d869a156d2a1b890bb3df62baf32f7"),
		hexUint256("0x31be135f97d08fd981231505542fcfa6"),
		hexUint256("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		hexUint256("0x5d6af8dedb81196699c329225ee604"),
		hexUint256("0x2216e584f5fa1ea926041bedfe98"),
		hexUint256("0x48a170391f7dc42444e8fa2"),
	}
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 as an exact Q64.96
// integer. The computation is pure integer arithmetic and matches the
// on-chain value bit for bit.
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: %d", ErrTickOutOfRange, tick)
	}

	abs := int64(tick)
	if abs < 0 {
		abs = -abs
	}

	ratio := new(uint256.Int)
	if abs&1 != 0 {
		ratio.Set(tickFactors[0])
	} else {
		ratio.Set(oneX128)
	}
	for i := 1; i < len(tickFactors); i++ {
		if abs&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, tickFactors[i])
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Shift 128.128 down to Q64.96, rounding up so the result never
	// understates the ratio.
	rem := new(uint256.Int).And(ratio, roundMask)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.Add(ratio, one)
	}
	return ratio.ToBig(), nil
}

func hexUint256(s string) *uint256.Int {
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		panic("v3math: bad hex constant " + s)
	}
	return uint256.MustFromBig(n)
}
