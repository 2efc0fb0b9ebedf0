// Package onchain fetches chain activity snapshots from the public
// DefiLlama API. Every metric is independently optional: a failed call
// yields None for that metric and the snapshot is still usable.
package onchain

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

const (
	defaultBaseURL       = "https://api.llama.fi"
	defaultStablesURL    = "https://stablecoins.llama.fi"
	stablecoinChainsPath = "/stablecoinchains"
)

// Client talks to DefiLlama. No API key is required; the API is
// rate-limited server side.
type Client struct {
	client  *resty.Client
	stables *resty.Client
}

// NewClient creates a DefiLlama client.
func NewClient() *Client {
	return &Client{
		client:  resty.New().SetBaseURL(defaultBaseURL),
		stables: resty.New().SetBaseURL(defaultStablesURL),
	}
}

// SetBaseURLs overrides both endpoints. Intended for tests.
func (c *Client) SetBaseURLs(base, stables string) {
	c.client.SetBaseURL(base)
	c.stables.SetBaseURL(stables)
}

// Snapshot gathers the on-chain metrics for a chain. Individual
// failures are swallowed; the corresponding metric is simply None.
func (c *Client) Snapshot(ctx context.Context, chain string) types.ChainSnapshot {
	snap := types.ChainSnapshot{
		TVLChange24h:   c.tvlChange24h(ctx, chain),
		DEXVolume24h:   c.summaryTotal24h(ctx, "/summary/dexs/"+chain),
		PerpsVolume24h: c.summaryTotal24h(ctx, "/summary/perps/"+chain),
		StableSupply:   c.stableSupply(ctx, chain),
	}

	snap.Fees24h, snap.Revenue24h = c.feesAndRevenue(ctx, chain)

	return snap
}

type tvlPoint struct {
	Date int64   `json:"date"`
	TVL  float64 `json:"tvl"`
}

// tvlChange24h returns the percent change between the last two daily
// TVL observations.
func (c *Client) tvlChange24h(ctx context.Context, chain string) optional.Option[float64] {
	var points []tvlPoint

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&points).
		Get("/v2/historicalChainTvl/" + chain)
	if err != nil || resp.IsError() || len(points) < 2 {
		return optional.None[float64]()
	}

	prev := points[len(points)-2].TVL
	if prev == 0 {
		return optional.None[float64]()
	}

	last := points[len(points)-1].TVL

	return optional.Some((last - prev) / prev * 100)
}

type summaryResponse struct {
	Data struct {
		Total24h *float64 `json:"total24h"`
	} `json:"data"`
}

func (c *Client) summaryTotal24h(ctx context.Context, path string) optional.Option[float64] {
	var out summaryResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(path)
	if err != nil || resp.IsError() || out.Data.Total24h == nil {
		return optional.None[float64]()
	}

	return optional.Some(*out.Data.Total24h)
}

type feesResponse struct {
	Total24hFees    *float64 `json:"total24hFees"`
	Total24hRevenue *float64 `json:"total24hRevenue"`
}

func (c *Client) feesAndRevenue(ctx context.Context, chain string) (fees, revenue optional.Option[float64]) {
	var out feesResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/summary/fees/" + chain)
	if err != nil || resp.IsError() {
		return optional.None[float64](), optional.None[float64]()
	}

	fees = optional.None[float64]()
	if out.Total24hFees != nil {
		fees = optional.Some(*out.Total24hFees)
	}

	revenue = optional.None[float64]()
	if out.Total24hRevenue != nil {
		revenue = optional.Some(*out.Total24hRevenue)
	}

	return fees, revenue
}

type stablecoinChainsResponse struct {
	Chains []struct {
		Chain string `json:"chain"`
		Total struct {
			TotalCirculatingUSD *float64 `json:"totalCirculatingUSD"`
		} `json:"total"`
	} `json:"chains"`
}

func (c *Client) stableSupply(ctx context.Context, chain string) optional.Option[float64] {
	var out stablecoinChainsResponse

	resp, err := c.stables.R().
		SetContext(ctx).
		SetResult(&out).
		Get(stablecoinChainsPath)
	if err != nil || resp.IsError() {
		return optional.None[float64]()
	}

	for _, row := range out.Chains {
		if strings.EqualFold(row.Chain, chain) && row.Total.TotalCirculatingUSD != nil {
			return optional.Some(*row.Total.TotalCirculatingUSD)
		}
	}

	return optional.None[float64]()
}
