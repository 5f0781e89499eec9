package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/model"
)

var (
	addrNative = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	addrStable = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	addrAlt    = common.HexToAddress("0x00000000000000000000000000000000000000e3")
	addrOther  = common.HexToAddress("0x00000000000000000000000000000000000000e4")
)

type fakeQuotes struct {
	mu      sync.Mutex
	prices  map[string]float64
	err     error
	calls   int
	lastIDs []string
}

func (f *fakeQuotes) Prices(_ context.Context, ids []string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastIDs = append([]string(nil), ids...)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		if price, ok := f.prices[id]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func (f *fakeQuotes) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeQuotes) lastRequest() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lastIDs...)
}

func oracleTokens() ChainTokens {
	return ChainTokens{
		WrappedNative: addrNative,
		Stablecoins:   []common.Address{addrStable},
		QuoteIDs:      map[common.Address]string{},
	}
}

// bridgeResolver serves a native/stable pool at 4 stable per native and
// an alt/native pool at 9 native per alt.
func bridgeResolver() *Resolver {
	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrNative, addrStable, 3000): addrPool1,
		registryKey(addrAlt, addrNative, 3000):    addrPool2,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrNative, addrPool2: addrAlt},
		token1: map[common.Address]common.Address{addrPool1: addrStable, addrPool2: addrNative},
		states: map[common.Address]model.PoolState{
			addrPool1: {SqrtPriceX96: q96Times(2)},
			addrPool2: {SqrtPriceX96: q96Times(3)},
		},
	}
	return NewResolver(registry, pools, &fakeTokenInfos{}, nil)
}

func TestUSDPriceStablecoin(t *testing.T) {
	quotes := &fakeQuotes{}
	// A native/stable pool exists, so the stablecoin would also be
	// resolvable on-chain; the peg must still win without any lookup.
	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrNative, addrStable, 3000): addrPool1,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrNative},
		token1: map[common.Address]common.Address{addrPool1: addrStable},
		states: map[common.Address]model.PoolState{addrPool1: {SqrtPriceX96: q96Times(2)}},
	}
	resolver := NewResolver(registry, pools, &fakeTokenInfos{}, nil)
	oracle := NewOracle(OracleConfig{Tokens: oracleTokens(), Quotes: quotes, Resolver: resolver}, nil)

	price, err := oracle.USDPrice(context.Background(), addrStable)
	if err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if price != 1.0 {
		t.Fatalf("price = %v, want 1", price)
	}
	if quotes.callCount() != 0 {
		t.Fatalf("quote source consulted for stablecoin")
	}
	if registry.calls != 0 {
		t.Fatalf("registry consulted %d times for stablecoin", registry.calls)
	}
}

func TestUSDPriceCached(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Set(addrAlt, 7.25)
	quotes := &fakeQuotes{}
	oracle := NewOracle(OracleConfig{Tokens: oracleTokens(), Cache: cache, Quotes: quotes}, nil)

	price, err := oracle.USDPrice(context.Background(), addrAlt)
	if err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if price != 7.25 {
		t.Fatalf("price = %v, want 7.25", price)
	}
	if quotes.callCount() != 0 {
		t.Fatalf("quote source consulted on cache hit")
	}
}

func TestUSDPriceQuoteSource(t *testing.T) {
	tokens := oracleTokens()
	tokens.QuoteIDs[addrAlt] = "alt-token"
	quotes := &fakeQuotes{prices: map[string]float64{"alt-token": 12.5}}
	oracle := NewOracle(OracleConfig{Tokens: tokens, Quotes: quotes}, nil)

	price, err := oracle.USDPrice(context.Background(), addrAlt)
	if err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if price != 12.5 {
		t.Fatalf("price = %v, want 12.5", price)
	}

	price, err = oracle.USDPrice(context.Background(), addrAlt)
	if err != nil {
		t.Fatalf("USDPrice second call: %v", err)
	}
	if price != 12.5 {
		t.Fatalf("second price = %v, want 12.5", price)
	}
	if quotes.callCount() != 1 {
		t.Fatalf("quote calls = %d, want 1", quotes.callCount())
	}
}

func TestUSDPriceRefetchesAfterExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cache := NewCache(300 * time.Second)
	cache.now = func() time.Time { return now }

	tokens := oracleTokens()
	tokens.QuoteIDs[addrAlt] = "alt-token"
	quotes := &fakeQuotes{prices: map[string]float64{"alt-token": 12.5}}
	oracle := NewOracle(OracleConfig{Tokens: tokens, Cache: cache, Quotes: quotes, RateLimit: 1000}, nil)

	if _, err := oracle.USDPrice(context.Background(), addrAlt); err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if quotes.callCount() != 1 {
		t.Fatalf("quote calls = %d, want 1", quotes.callCount())
	}

	now = now.Add(301 * time.Second)
	if _, err := oracle.USDPrice(context.Background(), addrAlt); err != nil {
		t.Fatalf("USDPrice after expiry: %v", err)
	}
	if quotes.callCount() != 2 {
		t.Fatalf("quote calls = %d, want 2 after expiry", quotes.callCount())
	}
}

func TestUSDPriceQuoteFailureFallsThrough(t *testing.T) {
	tokens := oracleTokens()
	tokens.QuoteIDs[addrAlt] = "alt-token"
	quotes := &fakeQuotes{err: errors.New("upstream down")}

	registry := &fakeRegistry{pools: map[string]common.Address{
		registryKey(addrAlt, addrStable, 100): addrPool1,
	}}
	pools := &fakePoolReader{
		token0: map[common.Address]common.Address{addrPool1: addrAlt},
		token1: map[common.Address]common.Address{addrPool1: addrStable},
		states: map[common.Address]model.PoolState{addrPool1: {SqrtPriceX96: q96Times(2)}},
	}
	resolver := NewResolver(registry, pools, &fakeTokenInfos{}, nil)
	oracle := NewOracle(OracleConfig{Tokens: tokens, Quotes: quotes, Resolver: resolver}, nil)

	price, err := oracle.USDPrice(context.Background(), addrAlt)
	if err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if price != 4.0 {
		t.Fatalf("price = %v, want 4 from direct stable pool", price)
	}
	if quotes.callCount() != 1 {
		t.Fatalf("quote calls = %d, want 1", quotes.callCount())
	}
}

func TestUSDPriceNativeBridge(t *testing.T) {
	cache := NewCache(time.Minute)
	oracle := NewOracle(OracleConfig{Tokens: oracleTokens(), Cache: cache, Resolver: bridgeResolver()}, nil)

	price, err := oracle.USDPrice(context.Background(), addrAlt)
	if err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if price != 36.0 {
		t.Fatalf("price = %v, want 36", price)
	}

	native, ok := cache.Get(addrNative)
	if !ok || native != 4.0 {
		t.Fatalf("bridge leg cache = %v, %v, want 4, true", native, ok)
	}
}

func TestUSDPriceWrappedNative(t *testing.T) {
	oracle := NewOracle(OracleConfig{Tokens: oracleTokens(), Resolver: bridgeResolver()}, nil)

	price, err := oracle.USDPrice(context.Background(), addrNative)
	if err != nil {
		t.Fatalf("USDPrice: %v", err)
	}
	if price != 4.0 {
		t.Fatalf("price = %v, want 4", price)
	}
}

func TestUSDPriceUnavailable(t *testing.T) {
	oracle := NewOracle(OracleConfig{Tokens: oracleTokens()}, nil)

	_, err := oracle.USDPrice(context.Background(), addrOther)
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestUSDPricesBatch(t *testing.T) {
	tokens := oracleTokens()
	tokens.QuoteIDs[addrAlt] = "alt-token"
	quotes := &fakeQuotes{prices: map[string]float64{"alt-token": 5.5}}
	oracle := NewOracle(OracleConfig{Tokens: tokens, Quotes: quotes, Workers: 2}, nil)

	got := oracle.USDPrices(context.Background(), []common.Address{addrStable, addrAlt, addrOther, addrAlt})

	if len(got) != 2 {
		t.Fatalf("result = %v, want 2 entries", got)
	}
	if got[addrStable] != 1.0 {
		t.Fatalf("stable price = %v, want 1", got[addrStable])
	}
	if got[addrAlt] != 5.5 {
		t.Fatalf("alt price = %v, want 5.5", got[addrAlt])
	}
	if _, ok := got[addrOther]; ok {
		t.Fatalf("unpriceable token present in result")
	}

	if quotes.callCount() != 1 {
		t.Fatalf("quote calls = %d, want one bulk fetch", quotes.callCount())
	}
	ids := quotes.lastRequest()
	if len(ids) != 1 || ids[0] != "alt-token" {
		t.Fatalf("bulk fetch ids = %v, want [alt-token]", ids)
	}
}
