package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Default parameters for the derived columns.
const (
	EMAFastSpan   = 20
	EMAMediumSpan = 50
	EMASlowSpan   = 200

	RSIPeriod = 14

	MACDFastSpan   = 12
	MACDSlowSpan   = 26
	MACDSignalSpan = 9

	ATRPeriod = 14

	SwingWindow  = 20
	VolumeWindow = 20
)

// Frame augments an OHLCV series with derived indicator columns. Each
// column has the same length as the series; entries are NaN wherever
// there is insufficient history. NaN is a sentinel, not a zero: any
// comparison against it evaluates to false, so a filter reading an
// undefined value is simply not satisfied.
type Frame struct {
	Bars types.Series

	EMAFast   []float64
	EMAMedium []float64
	EMASlow   []float64

	RSI []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	ATR []float64

	SwingHigh []float64
	SwingLow  []float64

	VolumeSMA []float64
}

// Compute derives all indicator columns from the series. It is pure
// and deterministic: the input is never mutated, and identical input
// yields identical output. Series shorter than two bars produce a
// frame whose derived columns are entirely NaN.
func Compute(bars types.Series) *Frame {
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))

	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
		highs[i] = b.High
		lows[i] = b.Low
	}

	macd, signal, hist := macdSeries(closes)

	return &Frame{
		Bars:       bars,
		EMAFast:    emaSeries(closes, EMAFastSpan),
		EMAMedium:  emaSeries(closes, EMAMediumSpan),
		EMASlow:    emaSeries(closes, EMASlowSpan),
		RSI:        rsiSeries(closes, RSIPeriod),
		MACD:       macd,
		MACDSignal: signal,
		MACDHist:   hist,
		ATR:        atrSeries(bars, ATRPeriod),
		SwingHigh:  rollingMax(highs, SwingWindow),
		SwingLow:   rollingMin(lows, SwingWindow),
		VolumeSMA:  rollingMean(volumes, VolumeWindow),
	}
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int {
	return len(f.Bars)
}

// Defined reports whether v carries a value rather than the
// insufficient-history sentinel.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}
