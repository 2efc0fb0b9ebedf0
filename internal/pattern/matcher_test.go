package pattern

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/stretchr/testify/suite"
)

type MatcherTestSuite struct {
	suite.Suite

	matcher *Matcher
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}

func (suite *MatcherTestSuite) SetupTest() {
	suite.matcher = NewMatcher(DefaultConfig())
}

var seriesStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// breakoutSeries builds 210 daily bars: a steady uptrend, a 20-bar
// consolidation capped at 138, and a final breakout bar that clears
// the cap on doubled volume and tags it intraday.
func breakoutSeries() types.Series {
	bars := make(types.Series, 0, 210)

	for i := 0; i <= 188; i++ {
		close := 100 + 0.2*float64(i)
		bars = append(bars, types.Bar{
			Time:   seriesStart.AddDate(0, 0, i),
			Open:   close - 0.1,
			High:   close + 0.4,
			Low:    close - 0.5,
			Close:  close,
			Volume: 1000,
		})
	}

	for i := 189; i <= 208; i++ {
		bars = append(bars, types.Bar{
			Time:   seriesStart.AddDate(0, 0, i),
			Open:   137,
			High:   138,
			Low:    136.5,
			Close:  137,
			Volume: 1000,
		})
	}

	bars = append(bars, types.Bar{
		Time:   seriesStart.AddDate(0, 0, 209),
		Open:   138.8,
		High:   145.5,
		Low:    138.3,
		Close:  145,
		Volume: 2000,
	})

	return bars
}

// breakdownSeries is the bearish mirror: a downtrend, a consolidation
// floored at 142, and a final breakdown bar whose high tags the floor.
func breakdownSeries() types.Series {
	bars := make(types.Series, 0, 210)

	for i := 0; i <= 188; i++ {
		close := 180 - 0.2*float64(i)
		bars = append(bars, types.Bar{
			Time:   seriesStart.AddDate(0, 0, i),
			Open:   close + 0.1,
			High:   close + 0.5,
			Low:    close - 0.4,
			Close:  close,
			Volume: 1000,
		})
	}

	for i := 189; i <= 208; i++ {
		bars = append(bars, types.Bar{
			Time:   seriesStart.AddDate(0, 0, i),
			Open:   143,
			High:   143.5,
			Low:    142,
			Close:  143,
			Volume: 1000,
		})
	}

	bars = append(bars, types.Bar{
		Time:   seriesStart.AddDate(0, 0, 209),
		Open:   141.3,
		High:   141.5,
		Low:    134.5,
		Close:  135,
		Volume: 2000,
	})

	return bars
}

// flatSeries never triggers: 210 bars of the same price.
func flatSeries() types.Series {
	bars := make(types.Series, 210)
	for i := range bars {
		bars[i] = types.Bar{
			Time:   seriesStart.AddDate(0, 0, i),
			Open:   100,
			High:   100,
			Low:    100,
			Close:  100,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *MatcherTestSuite) TestInsufficientHistory() {
	frame := indicator.Compute(breakoutSeries()[:150])

	suite.True(suite.matcher.Evaluate("ARB", frame).IsNone())
}

func (suite *MatcherTestSuite) TestBullishBreakout() {
	frame := indicator.Compute(breakoutSeries())

	sig, err := suite.matcher.Evaluate("ARB", frame).Take()
	suite.Require().NoError(err, "expected a long signal")

	suite.Equal("ARB", sig.Symbol)
	suite.Equal(types.DirectionLong, sig.Direction)
	suite.NotEmpty(sig.ID)
	suite.InDelta(145.0, sig.Entry, 1e-9)

	suite.Less(sig.Stop, sig.Entry)
	suite.Greater(sig.Targets[0], sig.Entry)
	suite.Greater(sig.Targets[1], sig.Targets[0])

	// Targets sit at 2x and 3x the stop distance.
	risk := sig.Entry - sig.Stop
	suite.InDelta(sig.Entry+2*risk, sig.Targets[0], 1e-9)
	suite.InDelta(sig.Entry+3*risk, sig.Targets[1], 1e-9)
}

func (suite *MatcherTestSuite) TestBearishBreakdown() {
	frame := indicator.Compute(breakdownSeries())

	sig, err := suite.matcher.Evaluate("SEI", frame).Take()
	suite.Require().NoError(err, "expected a short signal")

	suite.Equal(types.DirectionShort, sig.Direction)
	suite.InDelta(135.0, sig.Entry, 1e-9)

	suite.Greater(sig.Stop, sig.Entry)
	suite.Less(sig.Targets[0], sig.Entry)
	suite.Less(sig.Targets[1], sig.Targets[0])
}

func (suite *MatcherTestSuite) TestStaleBreakoutRejected() {
	// The bar before the breakout already closed above the prior swing
	// high, so the final bar is a continuation, not a fresh break.
	bars := breakoutSeries()
	bars[208].Close = 139
	bars[208].High = 139.5

	frame := indicator.Compute(bars)

	suite.True(suite.matcher.Evaluate("ARB", frame).IsNone())
}

func (suite *MatcherTestSuite) TestBreakoutWithoutRetestRejected() {
	// The final bar never dips back to the broken level.
	bars := breakoutSeries()
	bars[209].Open = 139.8
	bars[209].Low = 139.5

	frame := indicator.Compute(bars)

	suite.True(suite.matcher.Evaluate("ARB", frame).IsNone())
}

func (suite *MatcherTestSuite) TestBreakoutWithoutVolumeRejected() {
	bars := breakoutSeries()
	bars[209].Volume = 1100

	frame := indicator.Compute(bars)

	suite.True(suite.matcher.Evaluate("ARB", frame).IsNone())
}

func (suite *MatcherTestSuite) TestFlatSeriesNoSignal() {
	frame := indicator.Compute(flatSeries())

	suite.True(suite.matcher.Evaluate("ARB", frame).IsNone())
}

func (suite *MatcherTestSuite) TestDirectionalFiltersMutuallyExclusive() {
	// The opposite strict trend inequalities make the long and short
	// filter sets unsatisfiable together, whatever the tape does.
	fixtures := map[string]types.Series{
		"breakout":  breakoutSeries(),
		"breakdown": breakdownSeries(),
		"flat":      flatSeries(),
	}

	for name, bars := range fixtures {
		frame := indicator.Compute(bars)
		fib := indicator.Fib(frame.Bars, suite.matcher.cfg.FibLookback)

		long := suite.matcher.bullish(frame, fib)
		short := suite.matcher.bearish(frame, fib)

		suite.False(long && short, "both directions fired on %s fixture", name)
	}
}

func (suite *MatcherTestSuite) TestConfigDefaultsFilled() {
	m := NewMatcher(Config{})

	suite.Equal(MinBars, m.cfg.MinBars)
	suite.InDelta(1.2, m.cfg.VolumeExpansion, 1e-12)
	suite.InDelta(0.005, m.cfg.RetestTolerance, 1e-12)
	suite.InDelta(1.5, m.cfg.StopATRMultiple, 1e-12)
	suite.Equal(indicator.FibLookback, m.cfg.FibLookback)
}
