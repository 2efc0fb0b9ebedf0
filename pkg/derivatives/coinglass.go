// Package derivatives fetches perpetuals positioning metrics from
// Coinglass. The source is entirely optional: without an API key the
// client is disabled and the scorer proceeds without it.
package derivatives

import (
	"context"
	"math"

	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

const defaultBaseURL = "https://open-api.coinglass.com/public/v2"

// Client talks to Coinglass.
type Client struct {
	client      *resty.Client
	apiKey      string
	quoteSuffix string
}

// NewClient creates a Coinglass client. An empty API key disables it.
// An empty base falls back to the public v2 endpoint.
func NewClient(apiKey, base, quoteSuffix string) *Client {
	if base == "" {
		base = defaultBaseURL
	}

	if quoteSuffix == "" {
		quoteSuffix = "USDT"
	}

	return &Client{
		client:      resty.New().SetBaseURL(base),
		apiKey:      apiKey,
		quoteSuffix: quoteSuffix,
	}
}

// Enabled reports whether the client has credentials to operate.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// Snapshot gathers the derivatives metrics for a symbol at the given
// price. Individual failures yield None for that metric.
func (c *Client) Snapshot(ctx context.Context, symbol string, price float64) types.DerivativesSnapshot {
	if !c.Enabled() {
		return types.DerivativesSnapshot{}
	}

	pair := symbol + c.quoteSuffix

	snap := types.DerivativesSnapshot{
		FundingRate:    c.fundingRate(ctx, pair),
		OIChange1h:     c.oiChange1h(ctx, pair),
		LongShortRatio: c.longShortRatio(ctx, pair),
	}

	snap.LiqWallBelow, snap.LiqWallAbove = NearestWalls(price, c.liquidationBuckets(ctx, pair))

	return snap
}

type fundingRow struct {
	Rate        *float64 `json:"rate"`
	FundingRate *float64 `json:"fundingRate"`
}

type fundingResponse struct {
	Data []fundingRow `json:"data"`
}

func (c *Client) fundingRate(ctx context.Context, pair string) optional.Option[float64] {
	var out fundingResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("CG-API-KEY", c.apiKey).
		SetQueryParam("symbol", pair).
		SetResult(&out).
		Get("/perpetual/fundingRate")
	if err != nil || resp.IsError() || len(out.Data) == 0 {
		return optional.None[float64]()
	}

	// The most recent observation is first.
	row := out.Data[0]
	if row.Rate != nil {
		return optional.Some(*row.Rate)
	}

	if row.FundingRate != nil {
		return optional.Some(*row.FundingRate)
	}

	return optional.None[float64]()
}

type oiRow struct {
	OpenInterestUSD *float64 `json:"openInterestUsd"`
	OIUSD           *float64 `json:"oiUsd"`
}

func (r oiRow) value() (float64, bool) {
	if r.OpenInterestUSD != nil {
		return *r.OpenInterestUSD, true
	}

	if r.OIUSD != nil {
		return *r.OIUSD, true
	}

	return 0, false
}

type oiResponse struct {
	Data []oiRow `json:"data"`
}

func (c *Client) oiChange1h(ctx context.Context, pair string) optional.Option[float64] {
	var out oiResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("CG-API-KEY", c.apiKey).
		SetQueryParams(map[string]string{"symbol": pair, "interval": "1h"}).
		SetResult(&out).
		Get("/openInterest")
	if err != nil || resp.IsError() || len(out.Data) < 2 {
		return optional.None[float64]()
	}

	now, okNow := out.Data[len(out.Data)-1].value()
	prev, okPrev := out.Data[len(out.Data)-2].value()

	if !okNow || !okPrev || prev <= 0 {
		return optional.None[float64]()
	}

	return optional.Some(100 * (now - prev) / prev)
}

type longShortRow struct {
	LongShortRate *float64 `json:"longShortRate"`
	Ratio         *float64 `json:"ratio"`
}

type longShortResponse struct {
	Data []longShortRow `json:"data"`
}

func (c *Client) longShortRatio(ctx context.Context, pair string) optional.Option[float64] {
	var out longShortResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("CG-API-KEY", c.apiKey).
		SetQueryParam("symbol", pair).
		SetResult(&out).
		Get("/longShortRate")
	if err != nil || resp.IsError() || len(out.Data) == 0 {
		return optional.None[float64]()
	}

	row := out.Data[len(out.Data)-1]
	if row.LongShortRate != nil {
		return optional.Some(*row.LongShortRate)
	}

	if row.Ratio != nil {
		return optional.Some(*row.Ratio)
	}

	return optional.None[float64]()
}

// Bucket is one liquidation heatmap cell.
type Bucket struct {
	Price   *float64 `json:"price"`
	Level   *float64 `json:"level"`
	SizeUSD *float64 `json:"sizeUsd"`
	Sum     *float64 `json:"sum"`
}

func (b Bucket) price() float64 {
	if b.Price != nil {
		return *b.Price
	}

	if b.Level != nil {
		return *b.Level
	}

	return 0
}

func (b Bucket) size() float64 {
	if b.SizeUSD != nil {
		return *b.SizeUSD
	}

	if b.Sum != nil {
		return *b.Sum
	}

	return 0
}

type heatmapResponse struct {
	Data []Bucket `json:"data"`
}

func (c *Client) liquidationBuckets(ctx context.Context, pair string) []Bucket {
	var out heatmapResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("CG-API-KEY", c.apiKey).
		SetQueryParam("symbol", pair).
		SetResult(&out).
		Get("/liquidation/heatmap")
	if err != nil || resp.IsError() {
		return nil
	}

	return out.Data
}

// NearestWalls returns the percent distance to the closest liquidation
// cluster below and above the price. Buckets with a non-positive price
// or size are ignored.
func NearestWalls(price float64, buckets []Bucket) (below, above optional.Option[float64]) {
	below = optional.None[float64]()
	above = optional.None[float64]()

	if price <= 0 {
		return below, above
	}

	for _, b := range buckets {
		p := b.price()
		if p <= 0 || b.size() <= 0 {
			continue
		}

		dist := math.Abs((p-price)/price) * 100

		if p < price {
			if current, err := below.Take(); err != nil || dist < current {
				below = optional.Some(dist)
			}
		} else {
			if current, err := above.Take(); err != nil || dist < current {
				above = optional.Some(dist)
			}
		}
	}

	return below, above
}
