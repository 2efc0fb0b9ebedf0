// Package universe resolves the set of assets to scan: a core list
// from configuration, optionally extended with the top listings by
// market cap from CoinMarketCap.
package universe

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://pro-api.coinmarketcap.com/v1"

// Provider resolves the scan universe. Without an API key it degrades
// to the core list only.
type Provider struct {
	client *resty.Client
	logger *logger.Logger
	apiKey string
	core   []string
	topN   int
}

// New creates a provider. core symbols are normalized to uppercase.
func New(log *logger.Logger, apiKey string, core []string, topN int) *Provider {
	normalized := make([]string, 0, len(core))

	for _, s := range core {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			normalized = append(normalized, s)
		}
	}

	return &Provider{
		client: resty.New().SetBaseURL(defaultBaseURL),
		logger: log,
		apiKey: apiKey,
		core:   normalized,
		topN:   topN,
	}
}

// SetBaseURL overrides the listings endpoint. Intended for tests.
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

type listingsResponse struct {
	Data []struct {
		Symbol string `json:"symbol"`
	} `json:"data"`
}

// Symbols returns the sorted, deduplicated scan universe. Listing
// failures degrade to the core list with a warning; they never abort.
func (p *Provider) Symbols(ctx context.Context) []string {
	seen := make(map[string]struct{}, len(p.core))
	for _, s := range p.core {
		seen[s] = struct{}{}
	}

	if p.apiKey == "" {
		p.logger.Warn("no CoinMarketCap API key, scanning core universe only")
	} else if p.topN > 0 {
		listed, err := p.topListings(ctx)
		if err != nil {
			p.logger.Warn("failed to fetch top listings", zap.Error(err))
		}

		for _, s := range listed {
			seen[strings.ToUpper(s)] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}

	sort.Strings(symbols)

	return symbols
}

func (p *Provider) topListings(ctx context.Context) ([]string, error) {
	var out listingsResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-CMC_PRO_API_KEY", p.apiKey).
		SetQueryParams(map[string]string{
			"limit":   strconv.Itoa(p.topN),
			"convert": "USD",
		}).
		SetResult(&out).
		Get("/cryptocurrency/listings/latest")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUniverseFetchFailed, "listings request failed", err)
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeUniverseFetchFailed, "listings request returned %s", resp.Status())
	}

	symbols := make([]string, 0, len(out.Data))
	for _, d := range out.Data {
		symbols = append(symbols, d.Symbol)
	}

	return symbols, nil
}

type globalResponse struct {
	Data struct {
		BTCDominance float64 `json:"btc_dominance"`
		Quote        struct {
			USD struct {
				TotalMarketCap float64 `json:"total_market_cap"`
			} `json:"USD"`
		} `json:"quote"`
	} `json:"data"`
}

// GlobalMetrics returns the total crypto market cap and BTC dominance,
// or None values on any failure.
func (p *Provider) GlobalMetrics(ctx context.Context) (totalMcap, btcDominance optional.Option[float64]) {
	if p.apiKey == "" {
		return optional.None[float64](), optional.None[float64]()
	}

	var out globalResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-CMC_PRO_API_KEY", p.apiKey).
		SetResult(&out).
		Get("/global-metrics/quotes/latest")
	if err != nil || resp.IsError() {
		return optional.None[float64](), optional.None[float64]()
	}

	return optional.Some(out.Data.Quote.USD.TotalMarketCap), optional.Some(out.Data.BTCDominance)
}
