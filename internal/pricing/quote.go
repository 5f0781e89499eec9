package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultQuoteBaseURL is the public CoinGecko API endpoint.
const DefaultQuoteBaseURL = "https://api.coingecko.com"

// CoinGeckoClient fetches spot USD prices from the CoinGecko simple
// price API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a client against the given base URL.
// An empty base URL selects the public endpoint.
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultQuoteBaseURL
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Prices returns USD prices keyed by quote identifier. Identifiers
// unknown to the API are absent from the result.
func (c *CoinGeckoClient) Prices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	endpoint := c.baseURL + "/api/v3/simple/price?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote response status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded map[string]map[string]float64
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}

	prices := make(map[string]float64, len(decoded))
	for id, currencies := range decoded {
		if usd, ok := currencies["usd"]; ok {
			prices[id] = usd
		}
	}
	return prices, nil
}
