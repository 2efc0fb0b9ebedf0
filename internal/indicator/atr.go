package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// atrSeries returns the Average True Range over the given period.
// True Range needs the previous close, so it exists from the second
// bar on; the ATR seed is the simple average of the first period true
// ranges and later entries use Wilder's exponential smoothing. The
// first period entries are NaN.
func atrSeries(bars types.Series, period int) []float64 {
	out := nanSlice(len(bars))
	if period <= 0 || len(bars) < period+1 {
		return out
	}

	seed := 0.0
	for i := 1; i <= period; i++ {
		seed += trueRange(bars[i], bars[i-1].Close)
	}

	atr := seed / float64(period)
	out[period] = atr

	for i := period + 1; i < len(bars); i++ {
		tr := trueRange(bars[i], bars[i-1].Close)
		atr = (atr*float64(period-1) + tr) / float64(period)
		out[i] = atr
	}

	return out
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(bar types.Bar, prevClose float64) float64 {
	return math.Max(
		bar.High-bar.Low,
		math.Max(
			math.Abs(bar.High-prevClose),
			math.Abs(bar.Low-prevClose),
		),
	)
}
