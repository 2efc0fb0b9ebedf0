// Package pattern evaluates breakout-and-retest (long) and
// breakdown-and-retest (short) conditions against the latest bar of an
// indicator frame. Evaluation is stateless: the rolling windows baked
// into the frame are the only "state".
package pattern

import (
	"math"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

const (
	// MinBars is the minimum history required before any evaluation.
	MinBars = 200

	// riskFloor keeps the displayed risk positive. No division happens
	// downstream; the floor only guards the stop/target arithmetic.
	riskFloor = 1e-6
)

// Config tunes the matcher. Zero values are replaced by defaults.
type Config struct {
	// MinBars is the minimum series length for evaluation.
	MinBars int
	// VolumeExpansion is the multiple of the prior volume average the
	// latest volume must exceed.
	VolumeExpansion float64
	// RetestTolerance is the fractional band around the broken level
	// that counts as a retest touch, e.g. 0.005 = 0.5%.
	RetestTolerance float64
	// StopATRMultiple sizes the stop distance in ATRs.
	StopATRMultiple float64
	// FibLookback is the trailing window for retracement levels.
	FibLookback int
}

// DefaultConfig returns the standard breakout-and-retest parameters.
func DefaultConfig() Config {
	return Config{
		MinBars:         MinBars,
		VolumeExpansion: 1.2,
		RetestTolerance: 0.005,
		StopATRMultiple: 1.5,
		FibLookback:     indicator.FibLookback,
	}
}

// Matcher evaluates directional setups on indicator frames.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a matcher, filling zero config fields with defaults.
func NewMatcher(cfg Config) *Matcher {
	def := DefaultConfig()

	if cfg.MinBars <= 0 {
		cfg.MinBars = def.MinBars
	}

	if cfg.VolumeExpansion <= 0 {
		cfg.VolumeExpansion = def.VolumeExpansion
	}

	if cfg.RetestTolerance <= 0 {
		cfg.RetestTolerance = def.RetestTolerance
	}

	if cfg.StopATRMultiple <= 0 {
		cfg.StopATRMultiple = def.StopATRMultiple
	}

	if cfg.FibLookback <= 0 {
		cfg.FibLookback = def.FibLookback
	}

	return &Matcher{cfg: cfg}
}

// Evaluate checks the latest bar of the frame for a directional setup.
// The long and short filter sets are mutually exclusive by their
// opposite strict trend inequalities, so at most one can fire.
func (m *Matcher) Evaluate(symbol string, f *indicator.Frame) optional.Option[types.TradeSignal] {
	if f.Len() < m.cfg.MinBars {
		return optional.None[types.TradeSignal]()
	}

	fib := indicator.Fib(f.Bars, m.cfg.FibLookback)

	if m.bullish(f, fib) {
		return optional.Some(m.describe(symbol, f, types.DirectionLong))
	}

	if m.bearish(f, fib) {
		return optional.Some(m.describe(symbol, f, types.DirectionShort))
	}

	return optional.None[types.TradeSignal]()
}

// bullish checks the breakout-and-retest filter set. Every comparison
// against a NaN column evaluates to false, so missing history means
// the filter is not satisfied rather than an error.
func (m *Matcher) bullish(f *indicator.Frame, fib indicator.FibLevels) bool {
	last := f.Len() - 1
	prev := last - 1
	prev2 := last - 2
	bar := f.Bars[last]

	trend := bar.Close > f.EMAMedium[last] && f.EMAMedium[last] > f.EMASlow[last]
	momentum := f.MACDHist[last] > 0 && f.RSI[last] > 50
	volume := bar.Volume > m.cfg.VolumeExpansion*f.VolumeSMA[prev]

	// The breakout must belong to the latest bar: the previous close
	// had not yet cleared the swing high as of two bars prior. This
	// only isolates against the immediately preceding bar, not against
	// older breakouts of the same level.
	breakout := bar.Close > f.SwingHigh[prev] && f.Bars[prev].Close <= f.SwingHigh[prev2]

	// Intraday low tags the broken level and the close holds above it.
	retest := bar.Low <= f.SwingHigh[prev]*(1+m.cfg.RetestTolerance) && bar.Close >= f.SwingHigh[prev]

	retracement := bar.Close > fib.L618

	return trend && momentum && volume && breakout && retest && retracement
}

// bearish is the exact mirror of bullish.
func (m *Matcher) bearish(f *indicator.Frame, fib indicator.FibLevels) bool {
	last := f.Len() - 1
	prev := last - 1
	prev2 := last - 2
	bar := f.Bars[last]

	trend := bar.Close < f.EMAMedium[last] && f.EMAMedium[last] < f.EMASlow[last]
	momentum := f.MACDHist[last] < 0 && f.RSI[last] < 50
	volume := bar.Volume > m.cfg.VolumeExpansion*f.VolumeSMA[prev]

	breakdown := bar.Close < f.SwingLow[prev] && f.Bars[prev].Close >= f.SwingLow[prev2]

	retest := bar.High >= f.SwingLow[prev]*(1-m.cfg.RetestTolerance) && bar.Close <= f.SwingLow[prev]

	retracement := bar.Close < fib.L382

	return trend && momentum && volume && breakdown && retest && retracement
}

// describe builds the alert descriptor: ATR-sized stop and targets at
// 2x and 3x risk beyond entry in the trade direction.
func (m *Matcher) describe(symbol string, f *indicator.Frame, dir types.Direction) types.TradeSignal {
	last := f.Len() - 1
	bar := f.Bars[last]
	atr := f.ATR[last]

	var stop float64
	if dir == types.DirectionLong {
		stop = bar.Close - m.cfg.StopATRMultiple*atr
	} else {
		stop = bar.Close + m.cfg.StopATRMultiple*atr
	}

	risk := math.Max(math.Abs(bar.Close-stop), riskFloor)

	var targets [2]float64
	if dir == types.DirectionLong {
		targets = [2]float64{bar.Close + 2*risk, bar.Close + 3*risk}
	} else {
		targets = [2]float64{bar.Close - 2*risk, bar.Close - 3*risk}
	}

	return types.TradeSignal{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Direction: dir,
		Entry:     bar.Close,
		Stop:      stop,
		Targets:   targets,
		RSI:       f.RSI[last],
		MACDHist:  f.MACDHist[last],
		Time:      bar.Time,
	}
}
