package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/gate"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type fakeUniverse struct {
	symbols []string
}

func (f *fakeUniverse) Symbols(context.Context) []string {
	return f.symbols
}

type fakeMarket struct {
	series map[string]types.Series
	errs   map[string]error
}

func (f *fakeMarket) Candles(_ context.Context, symbol string, _ int) (types.Series, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}

	return f.series[symbol], nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, text)

	return nil
}

type fakeOnChain struct {
	snap   types.ChainSnapshot
	chains []string
}

func (f *fakeOnChain) Snapshot(_ context.Context, chain string) types.ChainSnapshot {
	f.chains = append(f.chains, chain)

	return f.snap
}

type fakeDerivatives struct {
	enabled bool
	snap    types.DerivativesSnapshot
}

func (f *fakeDerivatives) Enabled() bool {
	return f.enabled
}

func (f *fakeDerivatives) Snapshot(context.Context, string, float64) types.DerivativesSnapshot {
	return f.snap
}

type ScannerTestSuite struct {
	suite.Suite

	notifier *fakeNotifier
	clock    time.Time
}

func TestScannerSuite(t *testing.T) {
	suite.Run(t, new(ScannerTestSuite))
}

func (suite *ScannerTestSuite) SetupTest() {
	suite.notifier = &fakeNotifier{}
	suite.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *ScannerTestSuite) newScanner(opts Options) *Scanner {
	if opts.Notifier == nil {
		opts.Notifier = suite.notifier
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return suite.clock }
	}

	return New(opts)
}

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// signalSeries builds 210 bars that trigger a long setup on the final
// bar: an uptrend, a consolidation capped at 138, then a breakout that
// retests the cap on doubled volume.
func signalSeries() types.Series {
	bars := make(types.Series, 0, 210)

	for i := 0; i <= 188; i++ {
		close := 100 + 0.2*float64(i)
		bars = append(bars, types.Bar{
			Time:   testStart.AddDate(0, 0, i),
			Open:   close - 0.1,
			High:   close + 0.4,
			Low:    close - 0.5,
			Close:  close,
			Volume: 1000,
		})
	}

	for i := 189; i <= 208; i++ {
		bars = append(bars, types.Bar{
			Time:   testStart.AddDate(0, 0, i),
			Open:   137,
			High:   138,
			Low:    136.5,
			Close:  137,
			Volume: 1000,
		})
	}

	return append(bars, types.Bar{
		Time:   testStart.AddDate(0, 0, 209),
		Open:   138.8,
		High:   145.5,
		Low:    138.3,
		Close:  145,
		Volume: 2000,
	})
}

// shortSignalSeries is the bearish mirror of signalSeries: a downtrend,
// a consolidation floored at 142, then a breakdown bar whose high tags
// the floor on doubled volume.
func shortSignalSeries() types.Series {
	bars := make(types.Series, 0, 210)

	for i := 0; i <= 188; i++ {
		close := 180 - 0.2*float64(i)
		bars = append(bars, types.Bar{
			Time:   testStart.AddDate(0, 0, i),
			Open:   close + 0.1,
			High:   close + 0.5,
			Low:    close - 0.4,
			Close:  close,
			Volume: 1000,
		})
	}

	for i := 189; i <= 208; i++ {
		bars = append(bars, types.Bar{
			Time:   testStart.AddDate(0, 0, i),
			Open:   143,
			High:   143.5,
			Low:    142,
			Close:  143,
			Volume: 1000,
		})
	}

	return append(bars, types.Bar{
		Time:   testStart.AddDate(0, 0, 209),
		Open:   141.3,
		High:   141.5,
		Low:    134.5,
		Close:  135,
		Volume: 2000,
	})
}

// quietSeries never triggers: a long flat tape.
func quietSeries() types.Series {
	bars := make(types.Series, 210)
	for i := range bars {
		bars[i] = types.Bar{
			Time:   testStart.AddDate(0, 0, i),
			Open:   100,
			High:   100.5,
			Low:    99.5,
			Close:  100,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *ScannerTestSuite) TestEmitsConfirmedSignal() {
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Require().Len(emitted, 1)
	suite.Equal("ARB", emitted[0].Symbol)
	suite.Equal(types.DirectionLong, emitted[0].Direction)

	suite.Require().Len(suite.notifier.sent, 1)
	suite.Contains(suite.notifier.sent[0], "[BUY] ARB")
	suite.Contains(suite.notifier.sent[0], "On-chain: none")
}

func (suite *ScannerTestSuite) TestQuietTapeEmitsNothing() {
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": quietSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
	})

	suite.Empty(scan.ScanOnce(context.Background()))
	suite.Empty(suite.notifier.sent)
}

func (suite *ScannerTestSuite) TestAssetFailureDoesNotAbortCycle() {
	scan := suite.newScanner(Options{
		Market: &fakeMarket{
			series: map[string]types.Series{"ARB": signalSeries()},
			errs: map[string]error{
				"BAD": errors.New(errors.ErrCodeMarketDataFetchFailed, "exchange unavailable"),
			},
		},
		Universe: &fakeUniverse{symbols: []string{"BAD", "ARB"}},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Require().Len(emitted, 1)
	suite.Equal("ARB", emitted[0].Symbol)
}

func (suite *ScannerTestSuite) TestShortHistorySkipped() {
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()[:150]}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
	})

	suite.Empty(scan.ScanOnce(context.Background()))
}

func (suite *ScannerTestSuite) TestQuietChainSuppressesSignal() {
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		OnChain:  &fakeOnChain{},
		Chains:   map[string]string{"ARB": "arbitrum"},
	})

	suite.Empty(scan.ScanOnce(context.Background()))
	suite.Empty(suite.notifier.sent)
}

func (suite *ScannerTestSuite) TestQuietChainDoesNotSuppressShort() {
	// A configured chain with no activity gates longs only: the
	// breakdown still goes out.
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": shortSignalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		OnChain:  &fakeOnChain{},
		Chains:   map[string]string{"ARB": "arbitrum"},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Require().Len(emitted, 1)
	suite.Equal(types.DirectionShort, emitted[0].Direction)
	suite.Require().Len(suite.notifier.sent, 1)
	suite.Contains(suite.notifier.sent[0], "[SELL] ARB")
}

func (suite *ScannerTestSuite) TestActiveChainConfirmsSignal() {
	onchain := &fakeOnChain{
		snap: types.ChainSnapshot{TVLChange24h: optional.Some(7.5)},
	}

	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		OnChain:  onchain,
		Chains:   map[string]string{"ARB": "arbitrum"},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Require().Len(emitted, 1)
	suite.Equal([]string{"arbitrum"}, onchain.chains)
	suite.Contains(suite.notifier.sent[0], "TVL +7.5%")
}

func (suite *ScannerTestSuite) TestUnmappedSymbolSkipsOnChainLookup() {
	onchain := &fakeOnChain{}

	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		OnChain:  onchain,
		Chains:   map[string]string{"SEI": "sei"},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Len(emitted, 1)
	suite.Empty(onchain.chains)
}

func (suite *ScannerTestSuite) TestDisabledDerivativesSkipped() {
	scan := suite.newScanner(Options{
		Market:      &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe:    &fakeUniverse{symbols: []string{"ARB"}},
		Derivatives: &fakeDerivatives{enabled: false},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Require().Len(emitted, 1)
	suite.NotContains(suite.notifier.sent[0], "crowd")
}

func (suite *ScannerTestSuite) TestDerivativesAnnotateSignal() {
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		Derivatives: &fakeDerivatives{
			enabled: true,
			snap:    types.DerivativesSnapshot{FundingRate: optional.Some(0.002)},
		},
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Require().Len(emitted, 1)
	suite.Contains(suite.notifier.sent[0], "crowd LONG")
}

func (suite *ScannerTestSuite) TestRateLimitSuppresses() {
	g := gate.New(gate.DefaultLimits())
	for _, asset := range []string{"X", "Y", "Z"} {
		g.Record(asset, suite.clock)
	}

	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		Gate:     g,
	})

	suite.Empty(scan.ScanOnce(context.Background()))
	suite.Empty(suite.notifier.sent)
}

func (suite *ScannerTestSuite) TestFailedDeliveryDoesNotBurnBudget() {
	g := gate.New(gate.DefaultLimits())
	suite.notifier.err = errors.New(errors.ErrCodeNotificationFailed, "webhook down")

	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
		Gate:     g,
	})

	suite.Empty(scan.ScanOnce(context.Background()))

	hourly, daily := g.Counts(suite.clock)
	suite.Equal(0, hourly)
	suite.Equal(0, daily)

	// Once delivery recovers the same signal goes out with no cooldown
	// in the way.
	suite.notifier.err = nil
	suite.Len(scan.ScanOnce(context.Background()), 1)
}

func (suite *ScannerTestSuite) TestRecordOnFailureBurnsBudget() {
	g := gate.New(gate.DefaultLimits())
	suite.notifier.err = errors.New(errors.ErrCodeNotificationFailed, "webhook down")

	scan := suite.newScanner(Options{
		Market:          &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe:        &fakeUniverse{symbols: []string{"ARB"}},
		Gate:            g,
		RecordOnFailure: true,
	})

	emitted := scan.ScanOnce(context.Background())

	suite.Len(emitted, 1)

	hourly, _ := g.Counts(suite.clock)
	suite.Equal(1, hourly)

	// The cooldown now blocks a retry even though nothing was delivered.
	suite.notifier.err = nil
	suite.Empty(scan.ScanOnce(context.Background()))
}

func (suite *ScannerTestSuite) TestCooldownBlocksRepeatAlert() {
	scan := suite.newScanner(Options{
		Market:   &fakeMarket{series: map[string]types.Series{"ARB": signalSeries()}},
		Universe: &fakeUniverse{symbols: []string{"ARB"}},
	})

	suite.Len(scan.ScanOnce(context.Background()), 1)

	suite.clock = suite.clock.Add(30 * time.Minute)
	suite.Empty(scan.ScanOnce(context.Background()))

	suite.clock = suite.clock.Add(60 * time.Minute)
	suite.Len(scan.ScanOnce(context.Background()), 1)
}
