package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoinGeckoPrices(t *testing.T) {
	var gotPath, gotIDs, gotCurrencies string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIDs = r.URL.Query().Get("ids")
		gotCurrencies = r.URL.Query().Get("vs_currencies")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ethereum":{"usd":3200.12},"dai":{"usd":0.999},"odd-one":{"eur":5}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL)
	prices, err := client.Prices(context.Background(), []string{"ethereum", "dai", "odd-one"})
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}

	if gotPath != "/api/v3/simple/price" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotIDs != "ethereum,dai,odd-one" {
		t.Fatalf("ids = %s", gotIDs)
	}
	if gotCurrencies != "usd" {
		t.Fatalf("vs_currencies = %s", gotCurrencies)
	}

	if prices["ethereum"] != 3200.12 {
		t.Fatalf("ethereum = %v", prices["ethereum"])
	}
	if prices["dai"] != 0.999 {
		t.Fatalf("dai = %v", prices["dai"])
	}
	if _, ok := prices["odd-one"]; ok {
		t.Fatalf("id without usd entry should be absent")
	}
}

func TestCoinGeckoPricesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL)
	if _, err := client.Prices(context.Background(), []string{"ethereum"}); err == nil {
		t.Fatalf("expected error on 429 response")
	}
}

func TestCoinGeckoPricesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ethereum":`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL)
	if _, err := client.Prices(context.Background(), []string{"ethereum"}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCoinGeckoPricesEmptyIDs(t *testing.T) {
	client := NewCoinGeckoClient("http://127.0.0.1:1")
	prices, err := client.Prices(context.Background(), nil)
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if len(prices) != 0 {
		t.Fatalf("want empty result, got %v", prices)
	}
}
