package pricing

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Fee tier search order per pair kind, widest pools first.
var (
	nativeStableTiers = []uint32{3000, 500}
	nativePairTiers   = []uint32{3000, 10000, 500}
	stablePairTiers   = []uint32{3000, 10000, 500, 100}
)

// ChainTokens describes the well-known tokens of one chain used for
// price derivation.
type ChainTokens struct {
	// WrappedNative is the wrapped native coin used as the bridge leg
	// of multi-hop derivations.
	WrappedNative common.Address
	// Stablecoins are USD-pegged tokens in bridge preference order.
	Stablecoins []common.Address
	// Symbols maps well-known symbols to addresses.
	Symbols map[string]common.Address
	// QuoteIDs maps token addresses to quote source identifiers.
	QuoteIDs map[common.Address]string
}

// IsStablecoin reports whether the token is configured USD-pegged.
func (t ChainTokens) IsStablecoin(token common.Address) bool {
	for _, stable := range t.Stablecoins {
		if token == stable {
			return true
		}
	}
	return false
}

// QuoteID returns the quote source identifier for the token.
func (t ChainTokens) QuoteID(token common.Address) (string, bool) {
	id, ok := t.QuoteIDs[token]
	return id, ok
}

// Resolve turns a symbol or hex address into a token address.
func (t ChainTokens) Resolve(symbolOrAddress string) (common.Address, bool) {
	if common.IsHexAddress(symbolOrAddress) {
		return common.HexToAddress(symbolOrAddress), true
	}
	addr, ok := t.Symbols[strings.ToUpper(symbolOrAddress)]
	return addr, ok
}

func (t ChainTokens) primaryStable() common.Address {
	if len(t.Stablecoins) == 0 {
		return common.Address{}
	}
	return t.Stablecoins[0]
}

// DefaultChainTokens returns the built-in token tables per chain.
func DefaultChainTokens() map[string]ChainTokens {
	ethereum := ChainTokens{
		WrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Stablecoins: []common.Address{
			common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), // USDC
			common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), // USDT
			common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), // DAI
		},
		Symbols: map[string]common.Address{
			"WETH": common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
			"USDC": common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
			"USDT": common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
			"DAI":  common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
			"WBTC": common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"),
		},
		QuoteIDs: map[common.Address]string{
			common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"): "ethereum",
			common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"): "usd-coin",
			common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"): "tether",
			common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"): "dai",
			common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"): "wrapped-bitcoin",
		},
	}

	arbitrum := ChainTokens{
		WrappedNative: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
		Stablecoins: []common.Address{
			common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"), // USDC
			common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"), // USDT
			common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"), // DAI
		},
		Symbols: map[string]common.Address{
			"WETH": common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
			"USDC": common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
			"USDT": common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"),
			"DAI":  common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"),
			"WBTC": common.HexToAddress("0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f"),
			"ARB":  common.HexToAddress("0x912CE59144191C1204E64559FE8253a0e49E6548"),
		},
		QuoteIDs: map[common.Address]string{
			common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"): "ethereum",
			common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"): "usd-coin",
			common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"): "tether",
			common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"): "dai",
			common.HexToAddress("0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f"): "wrapped-bitcoin",
			common.HexToAddress("0x912CE59144191C1204E64559FE8253a0e49E6548"): "arbitrum",
		},
	}

	return map[string]ChainTokens{
		"ethereum": ethereum,
		"arbitrum": arbitrum,
	}
}

// TokensFor returns the token table for the chain with overrides
// applied. Empty override fields keep the defaults.
func TokensFor(chain string, wrappedNative string, stablecoins []string, quoteIDs map[string]string) ChainTokens {
	tokens := DefaultChainTokens()[chain]
	if wrappedNative != "" {
		tokens.WrappedNative = common.HexToAddress(wrappedNative)
	}
	if len(stablecoins) > 0 {
		tokens.Stablecoins = make([]common.Address, 0, len(stablecoins))
		for _, stable := range stablecoins {
			tokens.Stablecoins = append(tokens.Stablecoins, common.HexToAddress(stable))
		}
	}
	if len(quoteIDs) > 0 {
		if tokens.QuoteIDs == nil {
			tokens.QuoteIDs = make(map[common.Address]string, len(quoteIDs))
		}
		for addr, id := range quoteIDs {
			tokens.QuoteIDs[common.HexToAddress(addr)] = id
		}
	}
	return tokens
}
