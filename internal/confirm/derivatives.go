package confirm

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// CrowdBias is the contrarian read of derivatives positioning: heavy
// one-sided positioning is noted, not treated as confirmation.
type CrowdBias string

const (
	CrowdLong    CrowdBias = "LONG"
	CrowdShort   CrowdBias = "SHORT"
	CrowdNeutral CrowdBias = "neutral"
)

// DerivativeThresholds tune the positioning score.
type DerivativeThresholds struct {
	// FundingHigh and FundingLow are funding-rate fractions per 8h;
	// a rate beyond the low bound scores one point, beyond the high
	// bound a second (symmetric below the negated bounds).
	FundingHigh float64
	FundingLow  float64
	// OIChange1hPct is the open-interest 1h percent-change bound.
	OIChange1hPct float64
}

// DefaultDerivativeThresholds returns the standard positioning bars:
// 0.15%/8h and 0.08%/8h funding, 3% open-interest change.
func DefaultDerivativeThresholds() DerivativeThresholds {
	return DerivativeThresholds{
		FundingHigh:   0.0015,
		FundingLow:    0.0008,
		OIChange1hPct: 3,
	}
}

// Long/short ratio score bounds.
const (
	lsrHigh    = 2.0
	lsrLow     = 1.6
	lsrLowNeg  = 0.6
	lsrHighNeg = 0.5
)

// DerivativesResult is the outcome of scoring one derivatives snapshot.
type DerivativesResult struct {
	// Score is the net positioning score; positive means the crowd
	// leans long.
	Score int
	// Bias is the crowd label derived from the score sign.
	Bias CrowdBias
	// Annotation is the human-readable breakdown, empty when no metric
	// was populated.
	Annotation string
	// HasData is false when the snapshot carried no metrics at all.
	HasData bool
}

// ScoreDerivatives computes the contrarian positioning score. It only
// ever annotates a pattern match; by default it never suppresses one.
func ScoreDerivatives(snap types.DerivativesSnapshot, th DerivativeThresholds) DerivativesResult {
	score := 0

	var parts []string

	if fr, err := snap.FundingRate.Take(); err == nil {
		parts = append(parts, fmt.Sprintf("Funding %+.2f%%/8h", fr*100))

		if fr > th.FundingLow {
			score++
		}

		if fr > th.FundingHigh {
			score++
		}

		if fr < -th.FundingLow {
			score--
		}

		if fr < -th.FundingHigh {
			score--
		}
	}

	if lsr, err := snap.LongShortRatio.Take(); err == nil {
		parts = append(parts, fmt.Sprintf("L/S %.2f", lsr))

		if lsr > lsrLow {
			score++
		}

		if lsr > lsrHigh {
			score++
		}

		if lsr < lsrLowNeg {
			score--
		}

		if lsr < lsrHighNeg {
			score--
		}
	}

	if oi, err := snap.OIChange1h.Take(); err == nil {
		parts = append(parts, fmt.Sprintf("OI 1h %+.1f%%", oi))

		if oi > th.OIChange1hPct {
			score++
		}

		if oi < -th.OIChange1hPct {
			score--
		}
	}

	// Liquidation walls are reported but never scored.
	if snap.LiqWallBelow.IsSome() || snap.LiqWallAbove.IsSome() {
		below := "-"
		if v, err := snap.LiqWallBelow.Take(); err == nil {
			below = fmt.Sprintf("-%.1f%%", v)
		}

		above := "-"
		if v, err := snap.LiqWallAbove.Take(); err == nil {
			above = fmt.Sprintf("+%.1f%%", v)
		}

		parts = append(parts, fmt.Sprintf("Liq walls: %s/%s", below, above))
	}

	if len(parts) == 0 {
		return DerivativesResult{Bias: CrowdNeutral, HasData: false}
	}

	bias := CrowdNeutral
	if score > 0 {
		bias = CrowdLong
	} else if score < 0 {
		bias = CrowdShort
	}

	return DerivativesResult{
		Score:      score,
		Bias:       bias,
		Annotation: fmt.Sprintf("crowd %s %+d | %s", bias, score, strings.Join(parts, " | ")),
		HasData:    true,
	}
}
