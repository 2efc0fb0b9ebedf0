package confirm

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// OnChainThresholds are the minimums a metric must clear to add one
// confirmation point. Amounts are in the asset's quote currency.
type OnChainThresholds struct {
	// TVLChangePct is the minimum 24h TVL percent change (inclusive).
	TVLChangePct float64
	// DEXVolume, PerpsVolume, Fees and StableSupply are strict lower
	// bounds on their respective 24h metrics.
	DEXVolume    float64
	PerpsVolume  float64
	Fees         float64
	StableSupply float64
}

// DefaultOnChainThresholds returns the standard confirmation bars.
func DefaultOnChainThresholds() OnChainThresholds {
	return OnChainThresholds{
		TVLChangePct: 5,
		DEXVolume:    5_000_000,
		PerpsVolume:  5_000_000,
		Fees:         200_000,
		StableSupply: 100_000_000,
	}
}

// OnChainResult is the outcome of scoring one chain snapshot.
type OnChainResult struct {
	// Score is the number of metrics that cleared their threshold.
	Score int
	// Confirmed is true when at least one metric cleared.
	Confirmed bool
	// Annotation is the human-readable breakdown.
	Annotation string
}

// ScoreOnChain computes the on-chain confirmation score. Missing
// metrics contribute nothing and never abort scoring.
func ScoreOnChain(snap types.ChainSnapshot, th OnChainThresholds) OnChainResult {
	score := 0

	var parts []string

	if v, err := snap.TVLChange24h.Take(); err == nil && v >= th.TVLChangePct {
		score++

		parts = append(parts, fmt.Sprintf("TVL %+.1f%%", v))
	}

	checks := []struct {
		value     interface{ Take() (float64, error) }
		label     string
		threshold float64
	}{
		{snap.DEXVolume24h, "DEX", th.DEXVolume},
		{snap.PerpsVolume24h, "PERPS", th.PerpsVolume},
		{snap.Fees24h, "FEES", th.Fees},
		{snap.StableSupply, "STABLES", th.StableSupply},
	}

	for _, c := range checks {
		if v, err := c.value.Take(); err == nil && v > c.threshold {
			score++

			parts = append(parts, fmt.Sprintf("%s $%.0f", c.label, v))
		}
	}

	annotation := "On-chain: none"
	if len(parts) > 0 {
		annotation = "On-chain: " + strings.Join(parts, " + ")
	}

	return OnChainResult{
		Score:      score,
		Confirmed:  score >= 1,
		Annotation: annotation,
	}
}
