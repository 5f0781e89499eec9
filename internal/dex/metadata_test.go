package dex

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestFetchTokenInfo(t *testing.T) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	caller := newFakeCaller()
	caller.respond(testUSDCAddr, packCall(t, parsed, "decimals"), packOutput(t, parsed, "decimals", uint8(6)))
	caller.respond(testUSDCAddr, packCall(t, parsed, "symbol"), packOutput(t, parsed, "symbol", "USDC"))
	caller.respond(testUSDCAddr, packCall(t, parsed, "name"), packOutput(t, parsed, "name", "USD Coin"))

	info := FetchTokenInfo(context.Background(), caller, testUSDCAddr, nil)
	if info.Symbol != "USDC" || info.Name != "USD Coin" || info.Decimals != 6 {
		t.Fatalf("info mismatch: %+v", info)
	}
	if info.Address != testUSDCAddr.Hex() {
		t.Fatalf("address: got %s", info.Address)
	}
}

func TestFetchTokenInfoDefaultsPerField(t *testing.T) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	token := common.HexToAddress("0x2222222222222222222222222222222222222222")
	caller := newFakeCaller()
	// Only decimals responds; symbol and name fail on both ABI variants.
	caller.respond(token, packCall(t, parsed, "decimals"), packOutput(t, parsed, "decimals", uint8(8)))
	caller.fail(token, packCall(t, parsed, "symbol"), fmt.Errorf("execution reverted"))
	caller.fail(token, packCall(t, parsed, "name"), fmt.Errorf("execution reverted"))

	info := FetchTokenInfo(context.Background(), caller, token, nil)
	if info.Decimals != 8 {
		t.Fatalf("decimals: got %d want 8", info.Decimals)
	}
	if info.Symbol != "UNKNOWN" {
		t.Fatalf("symbol: got %s want UNKNOWN", info.Symbol)
	}
	if info.Name != "Unknown Token" {
		t.Fatalf("name: got %s want Unknown Token", info.Name)
	}
}

func TestFetchTokenInfoAllCallsFail(t *testing.T) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	caller := newFakeCaller()
	caller.fail(token, packCall(t, parsed, "decimals"), fmt.Errorf("connection refused"))
	caller.fail(token, packCall(t, parsed, "symbol"), fmt.Errorf("connection refused"))
	caller.fail(token, packCall(t, parsed, "name"), fmt.Errorf("connection refused"))

	info := FetchTokenInfo(context.Background(), caller, token, nil)
	if info.Symbol != "UNKNOWN" || info.Name != "Unknown Token" || info.Decimals != 18 {
		t.Fatalf("expected full defaults, got %+v", info)
	}
}

func TestFetchTokenInfoBytes32Fallback(t *testing.T) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	token := common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")

	var symbol [32]byte
	copy(symbol[:], "MKR")
	var name [32]byte
	copy(name[:], "Maker")

	// The string and bytes32 ABIs share selectors, so one canned
	// response serves both unpack attempts.
	caller := newFakeCaller()
	caller.respond(token, packCall(t, stringABI, "decimals"), packOutput(t, stringABI, "decimals", uint8(18)))
	caller.respond(token, packCall(t, stringABI, "symbol"), packOutput(t, bytes32ABI, "symbol", symbol))
	caller.respond(token, packCall(t, stringABI, "name"), packOutput(t, bytes32ABI, "name", name))

	info := FetchTokenInfo(context.Background(), caller, token, nil)
	if info.Symbol != "MKR" {
		t.Fatalf("symbol: got %q want MKR", info.Symbol)
	}
	if info.Name != "Maker" {
		t.Fatalf("name: got %q want Maker", info.Name)
	}
}

func TestTokenDirectoryCaches(t *testing.T) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	caller := newFakeCaller()
	caller.respond(testWETHAddr, packCall(t, parsed, "decimals"), packOutput(t, parsed, "decimals", uint8(18)))
	caller.respond(testWETHAddr, packCall(t, parsed, "symbol"), packOutput(t, parsed, "symbol", "WETH"))
	caller.respond(testWETHAddr, packCall(t, parsed, "name"), packOutput(t, parsed, "name", "Wrapped Ether"))

	directory := NewTokenDirectory(caller, nil)
	first := directory.TokenInfo(context.Background(), testWETHAddr)
	if first.Symbol != "WETH" {
		t.Fatalf("symbol: got %s", first.Symbol)
	}
	callsAfterFirst := len(caller.calls)

	second := directory.TokenInfo(context.Background(), testWETHAddr)
	if second != first {
		t.Fatalf("cached info mismatch: %+v vs %+v", second, first)
	}
	if len(caller.calls) != callsAfterFirst {
		t.Fatalf("expected no calls on cache hit, got %d more", len(caller.calls)-callsAfterFirst)
	}
}
