package indicator

import "math"

// macdSeries returns the trend-momentum oscillator pair and its
// histogram: MACD = EMA(fast) - EMA(slow), signal = EMA of the MACD
// values over the signal span, histogram = MACD - signal. Each series
// is NaN until its inputs are defined.
func macdSeries(closes []float64) (macd, signal, hist []float64) {
	n := len(closes)
	macd = nanSlice(n)
	signal = nanSlice(n)
	hist = nanSlice(n)

	if n < MACDSlowSpan {
		return macd, signal, hist
	}

	fast := emaSeries(closes, MACDFastSpan)
	slow := emaSeries(closes, MACDSlowSpan)

	// MACD is defined from the first bar where the slow EMA is.
	start := MACDSlowSpan - 1
	for i := start; i < n; i++ {
		macd[i] = fast[i] - slow[i]
	}

	smoothed := emaSeries(macd[start:], MACDSignalSpan)
	for i, v := range smoothed {
		signal[start+i] = v
	}

	for i := range hist {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signal[i]) {
			hist[i] = macd[i] - signal[i]
		}
	}

	return macd, signal, hist
}
