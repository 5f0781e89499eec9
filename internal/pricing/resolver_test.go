package pricing

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/model"
)

var (
	addrTokenA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	addrTokenB = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	addrPool1  = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	addrPool2  = common.HexToAddress("0x00000000000000000000000000000000000000f2")
)

type fakeRegistry struct {
	pools map[string]common.Address
	calls int
}

func registryKey(a, b common.Address, fee uint32) string {
	return fmt.Sprintf("%s|%s|%d", a.Hex(), b.Hex(), fee)
}

func (f *fakeRegistry) PoolFor(_ context.Context, a, b common.Address, fee uint32) (common.Address, error) {
	f.calls++
	if pool, ok := f.pools[registryKey(a, b, fee)]; ok {
		return pool, nil
	}
	return common.Address{}, errors.New("no pool")
}

type fakePoolReader struct {
	token0 map[common.Address]common.Address
	token1 map[common.Address]common.Address
	states map[common.Address]model.PoolState
}

func (f *fakePoolReader) StateOf(_ context.Context, address common.Address) (model.PoolState, error) {
	state, ok := f.states[address]
	if !ok {
		return model.PoolState{}, errors.New("no state")
	}
	return state, nil
}

func (f *fakePoolReader) Token0Of(_ context.Context, address common.Address) (common.Address, error) {
	token, ok := f.token0[address]
	if !ok {
		return common.Address{}, errors.New("no contract")
	}
	return token, nil
}

func (f *fakePoolReader) Token1Of(_ context.Context, address common.Address) (common.Address, error) {
	token, ok := f.token1[address]
	if !ok {
		return common.Address{}, errors.New("no contract")
	}
	return token, nil
}

type fakeTokenInfos struct {
	decimals map[common.Address]uint8
}

func (f *fakeTokenInfos) TokenInfo(_ context.Context, token common.Address) model.TokenInfo {
	decimals, ok := f.decimals[token]
	if !ok {
		decimals = 18
	}
	return model.TokenInfo{Address: token.Hex(), Symbol: "TKN", Name: "Token", Decimals: decimals}
}

func q96Times(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Lsh(big.NewInt(1), 96))
}

func TestPairPriceFirstTier(t *testing.T) {
	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrTokenA, addrTokenB, 3000): addrPool1,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrTokenA},
		token1: map[common.Address]common.Address{addrPool1: addrTokenB},
		states: map[common.Address]model.PoolState{addrPool1: {SqrtPriceX96: q96Times(2)}},
	}
	resolver := NewResolver(registry, pools, &fakeTokenInfos{}, nil)

	price, err := resolver.PairPrice(context.Background(), addrTokenA, addrTokenB, []uint32{3000, 500})
	if err != nil {
		t.Fatalf("PairPrice: %v", err)
	}
	if price != 4.0 {
		t.Fatalf("price = %v, want 4", price)
	}
}

func TestPairPriceInverts(t *testing.T) {
	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrTokenA, addrTokenB, 3000): addrPool1,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrTokenB},
		token1: map[common.Address]common.Address{addrPool1: addrTokenA},
		states: map[common.Address]model.PoolState{addrPool1: {SqrtPriceX96: q96Times(2)}},
	}
	resolver := NewResolver(registry, pools, &fakeTokenInfos{}, nil)

	price, err := resolver.PairPrice(context.Background(), addrTokenA, addrTokenB, []uint32{3000})
	if err != nil {
		t.Fatalf("PairPrice: %v", err)
	}
	if price != 0.25 {
		t.Fatalf("price = %v, want 0.25", price)
	}
}

func TestPairPriceScalesDecimals(t *testing.T) {
	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrTokenA, addrTokenB, 3000): addrPool1,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrTokenA},
		token1: map[common.Address]common.Address{addrPool1: addrTokenB},
		states: map[common.Address]model.PoolState{addrPool1: {SqrtPriceX96: q96Times(2)}},
	}
	infos := &fakeTokenInfos{decimals: map[common.Address]uint8{
		addrTokenA: 18,
		addrTokenB: 6,
	}}
	resolver := NewResolver(registry, pools, infos, nil)

	price, err := resolver.PairPrice(context.Background(), addrTokenA, addrTokenB, []uint32{3000})
	if err != nil {
		t.Fatalf("PairPrice: %v", err)
	}
	if price != 4e12 {
		t.Fatalf("price = %v, want 4e12", price)
	}
}

func TestPairPriceSkipsUnusableTiers(t *testing.T) {
	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrTokenA, addrTokenB, 10000): addrPool1,
		registryKey(addrTokenA, addrTokenB, 500):   addrPool2,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrTokenA, addrPool2: addrTokenA},
		token1: map[common.Address]common.Address{addrPool1: addrTokenB, addrPool2: addrTokenB},
		states: map[common.Address]model.PoolState{
			addrPool1: {SqrtPriceX96: big.NewInt(0)},
			addrPool2: {SqrtPriceX96: q96Times(2)},
		},
	}
	resolver := NewResolver(registry, pools, &fakeTokenInfos{}, nil)

	// 3000 has no pool, 10000 has a zero sqrt price, 500 works.
	price, err := resolver.PairPrice(context.Background(), addrTokenA, addrTokenB, []uint32{3000, 10000, 500})
	if err != nil {
		t.Fatalf("PairPrice: %v", err)
	}
	if price != 4.0 {
		t.Fatalf("price = %v, want 4", price)
	}
}

func TestPairPriceExhaustsTiers(t *testing.T) {
	resolver := NewResolver(&fakeRegistry{}, &fakePoolReader{}, &fakeTokenInfos{}, nil)

	_, err := resolver.PairPrice(context.Background(), addrTokenA, addrTokenB, []uint32{3000, 500})
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
}
