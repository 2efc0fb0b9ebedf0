// Package confirm aggregates optional on-chain and derivatives
// metrics into a bounded confidence score that gates or annotates a
// pattern match. Missing data is always a neutral input: it can never
// raise and never blocks a signal on its own.
package confirm

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Config selects thresholds and the gating mode per source. Gating is
// deliberately asymmetric by default: on-chain activity reflects
// genuine usage and gates the match, while derivatives positioning is
// a contrarian read and only annotates.
type Config struct {
	OnChain     OnChainThresholds
	Derivatives DerivativeThresholds
	// OnChainGates makes a configured on-chain source a hard gate for
	// long entries. Shorts are never gated on chain activity.
	OnChainGates bool
	// DerivativesGate makes heavily crowded positioning aligned with
	// the trade direction a hard gate. Off by default.
	DerivativesGate bool
}

// DefaultConfig returns the standard soft/hard gating split.
func DefaultConfig() Config {
	return Config{
		OnChain:      DefaultOnChainThresholds(),
		Derivatives:  DefaultDerivativeThresholds(),
		OnChainGates: true,
	}
}

// Result is the combined confirmation verdict for one candidate signal.
type Result struct {
	// Pass is false only when a gating source rejected the match.
	Pass bool
	// Annotation is the combined human-readable breakdown.
	Annotation string
	// OnChain and Derivatives carry the per-source outcomes.
	OnChain     OnChainResult
	Derivatives DerivativesResult
}

// Scorer scores confirmation snapshots for candidate signals.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given config.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// crowdedGate is the |score| at which aligned positioning counts as
// heavily one-sided when the derivatives gate is enabled.
const crowdedGate = 2

// Score combines the sources for a signal in the given direction.
// A None snapshot means the source is not configured for this asset;
// absence of data must not block a signal that otherwise qualifies,
// so unconfigured sources auto-pass.
func (s *Scorer) Score(dir types.Direction, chain optional.Option[types.ChainSnapshot], derivs optional.Option[types.DerivativesSnapshot]) Result {
	res := Result{Pass: true}

	var parts []string

	if snap, err := chain.Take(); err == nil {
		res.OnChain = ScoreOnChain(snap, s.cfg.OnChain)
		parts = append(parts, res.OnChain.Annotation)

		// On-chain activity confirms accumulation, so it only gates
		// long entries. A quiet chain is consistent with a breakdown
		// and never vetoes a short.
		if s.cfg.OnChainGates && dir == types.DirectionLong && !res.OnChain.Confirmed {
			res.Pass = false
		}
	} else {
		// No chain configured for this asset: automatically confirmed.
		res.OnChain = OnChainResult{Confirmed: true, Annotation: "On-chain: none"}
		parts = append(parts, res.OnChain.Annotation)
	}

	if snap, err := derivs.Take(); err == nil {
		res.Derivatives = ScoreDerivatives(snap, s.cfg.Derivatives)
		if res.Derivatives.HasData {
			parts = append(parts, res.Derivatives.Annotation)
		}

		if s.cfg.DerivativesGate && s.crowdAgainst(dir, res.Derivatives) {
			res.Pass = false
		}
	} else {
		res.Derivatives = DerivativesResult{Bias: CrowdNeutral}
	}

	res.Annotation = strings.Join(parts, " | ")

	return res
}

// crowdAgainst reports whether positioning is heavily crowded in the
// trade direction. The read is contrarian: a crowd already leaning the
// same way argues against the entry.
func (s *Scorer) crowdAgainst(dir types.Direction, d DerivativesResult) bool {
	if !d.HasData {
		return false
	}

	switch dir {
	case types.DirectionLong:
		return d.Score >= crowdedGate
	case types.DirectionShort:
		return d.Score <= -crowdedGate
	default:
		return false
	}
}
