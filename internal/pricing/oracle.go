package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrPriceUnavailable reports that no layer could produce a USD price.
var ErrPriceUnavailable = errors.New("price unavailable")

// QuoteSource fetches USD prices by quote identifier.
type QuoteSource interface {
	Prices(ctx context.Context, ids []string) (map[string]float64, error)
}

// Oracle resolves token USD prices through layered sources: cache,
// stablecoin peg, quote API, then on-chain pools.
type Oracle struct {
	tokens   ChainTokens
	cache    *Cache
	quotes   QuoteSource
	resolver *Resolver
	limiter  *rate.Limiter
	group    singleflight.Group
	workers  int
	logger   *zap.Logger
}

// OracleConfig carries the oracle collaborators and tuning knobs.
// Zero values select defaults.
type OracleConfig struct {
	Tokens    ChainTokens
	Cache     *Cache
	Quotes    QuoteSource
	Resolver  *Resolver
	RateLimit rate.Limit
	Burst     int
	Workers   int
}

func NewOracle(cfg OracleConfig, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Oracle{
		tokens:   cfg.Tokens,
		cache:    cache,
		quotes:   cfg.Quotes,
		resolver: cfg.Resolver,
		limiter:  rate.NewLimiter(limit, burst),
		workers:  workers,
		logger:   logger,
	}
}

// USDPrice returns the USD price of the token. Concurrent requests for
// the same token share one resolution.
func (o *Oracle) USDPrice(ctx context.Context, token common.Address) (float64, error) {
	if price, ok := o.cache.Get(token); ok {
		return price, nil
	}
	value, err, _ := o.group.Do(strings.ToLower(token.Hex()), func() (interface{}, error) {
		return o.resolve(ctx, token)
	})
	if err != nil {
		return 0, err
	}
	return value.(float64), nil
}

func (o *Oracle) resolve(ctx context.Context, token common.Address) (float64, error) {
	if price, ok := o.cache.Get(token); ok {
		return price, nil
	}
	if o.tokens.IsStablecoin(token) {
		o.cache.Set(token, 1.0)
		return 1.0, nil
	}
	if id, ok := o.tokens.QuoteID(token); ok && o.quotes != nil {
		price, err := o.quotePrice(ctx, id)
		if err == nil {
			o.cache.Set(token, price)
			return price, nil
		}
		o.logger.Debug("quote source miss",
			zap.String("token", token.Hex()),
			zap.String("id", id),
			zap.Error(err))
	}
	price, err := o.chainPrice(ctx, token)
	if err != nil {
		return 0, err
	}
	o.cache.Set(token, price)
	return price, nil
}

func (o *Oracle) quotePrice(ctx context.Context, id string) (float64, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	prices, err := o.quotes.Prices(ctx, []string{id})
	if err != nil {
		return 0, err
	}
	price, ok := prices[id]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("%w: quote id %s", ErrPriceUnavailable, id)
	}
	return price, nil
}

// chainPrice derives a USD price from pools, preferring a wrapped
// native bridge and falling back to direct stablecoin pairs.
func (o *Oracle) chainPrice(ctx context.Context, token common.Address) (float64, error) {
	if o.resolver == nil {
		return 0, fmt.Errorf("%w: no on-chain resolver", ErrPriceUnavailable)
	}
	if o.tokens.WrappedNative == (common.Address{}) {
		return 0, fmt.Errorf("%w: no wrapped native configured", ErrPriceUnavailable)
	}
	if token == o.tokens.WrappedNative {
		return o.nativeUSD(ctx)
	}

	nativePrice, nativeErr := o.nativeUSD(ctx)
	if nativeErr == nil {
		perNative, err := o.resolver.PairPrice(ctx, token, o.tokens.WrappedNative, nativePairTiers)
		if err == nil {
			return perNative * nativePrice, nil
		}
		o.logger.Debug("no native pair price",
			zap.String("token", token.Hex()),
			zap.Error(err))
	} else {
		o.logger.Debug("no native usd price", zap.Error(nativeErr))
	}

	for _, stable := range o.tokens.Stablecoins {
		price, err := o.resolver.PairPrice(ctx, token, stable, stablePairTiers)
		if err != nil {
			continue
		}
		return price, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, token.Hex())
}

// nativeUSD prices the wrapped native token against the primary
// stablecoin pool.
func (o *Oracle) nativeUSD(ctx context.Context) (float64, error) {
	wnative := o.tokens.WrappedNative
	if price, ok := o.cache.Get(wnative); ok {
		return price, nil
	}
	stable := o.tokens.primaryStable()
	if stable == (common.Address{}) {
		return 0, fmt.Errorf("%w: no stablecoins configured", ErrPriceUnavailable)
	}
	price, err := o.resolver.PairPrice(ctx, wnative, stable, nativeStableTiers)
	if err != nil {
		return 0, err
	}
	o.cache.Set(wnative, price)
	return price, nil
}

// USDPrices resolves prices for a batch of tokens. Tokens that cannot
// be priced are absent from the result.
func (o *Oracle) USDPrices(ctx context.Context, tokens []common.Address) map[common.Address]float64 {
	o.prefetchQuotes(ctx, tokens)

	results := make(map[common.Address]float64, len(tokens))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	seen := make(map[common.Address]struct{}, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		token := token
		g.Go(func() error {
			price, err := o.USDPrice(gctx, token)
			if err != nil {
				o.logger.Debug("price unavailable",
					zap.String("token", token.Hex()),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			results[token] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// prefetchQuotes warms the cache with one bulk quote request covering
// every uncached token that has a quote identifier.
func (o *Oracle) prefetchQuotes(ctx context.Context, tokens []common.Address) {
	if o.quotes == nil {
		return
	}
	byID := make(map[string][]common.Address)
	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := o.cache.Get(token); ok {
			continue
		}
		if o.tokens.IsStablecoin(token) {
			continue
		}
		id, ok := o.tokens.QuoteID(token)
		if !ok {
			continue
		}
		if _, ok := byID[id]; !ok {
			ids = append(ids, id)
		}
		byID[id] = append(byID[id], token)
	}
	if len(ids) == 0 {
		return
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return
	}
	prices, err := o.quotes.Prices(ctx, ids)
	if err != nil {
		o.logger.Debug("bulk quote fetch failed",
			zap.Int("ids", len(ids)),
			zap.Error(err))
		return
	}
	for id, addrs := range byID {
		price, ok := prices[id]
		if !ok || price <= 0 {
			continue
		}
		for _, addr := range addrs {
			o.cache.Set(addr, price)
		}
	}
}
