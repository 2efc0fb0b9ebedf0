package types

import (
	"github.com/moznion/go-optional"
)

// ChainSnapshot holds the optional on-chain activity metrics for one
// chain. Any metric may be absent; absent metrics never abort scoring.
type ChainSnapshot struct {
	// TVLChange24h is the percent change in total value locked over the
	// last 24 hours.
	TVLChange24h optional.Option[float64]
	// DEXVolume24h is the 24-hour decentralized exchange volume in USD.
	DEXVolume24h optional.Option[float64]
	// PerpsVolume24h is the 24-hour perpetuals volume in USD.
	PerpsVolume24h optional.Option[float64]
	// Fees24h is the total fees generated in the last 24 hours in USD.
	Fees24h optional.Option[float64]
	// Revenue24h is the total revenue in the last 24 hours in USD.
	Revenue24h optional.Option[float64]
	// StableSupply is the circulating stablecoin supply on the chain in USD.
	StableSupply optional.Option[float64]
}

// DerivativesSnapshot holds the optional derivatives positioning
// metrics for one asset.
type DerivativesSnapshot struct {
	// FundingRate is the latest perpetual funding rate as a fraction
	// per 8 hours, e.g. 0.0008 = 0.08%/8h.
	FundingRate optional.Option[float64]
	// OIChange1h is the open-interest percent change over the last hour.
	OIChange1h optional.Option[float64]
	// LongShortRatio is the long/short accounts ratio; >1 means more longs.
	LongShortRatio optional.Option[float64]
	// LiqWallBelow is the percent distance to the nearest liquidation
	// cluster below the current price.
	LiqWallBelow optional.Option[float64]
	// LiqWallAbove is the percent distance to the nearest liquidation
	// cluster above the current price.
	LiqWallAbove optional.Option[float64]
}

// IsEmpty reports whether no derivatives metric is populated.
func (d DerivativesSnapshot) IsEmpty() bool {
	return d.FundingRate.IsNone() &&
		d.OIChange1h.IsNone() &&
		d.LongShortRatio.IsNone() &&
		d.LiqWallBelow.IsNone() &&
		d.LiqWallAbove.IsNone()
}
