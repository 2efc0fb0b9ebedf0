package indicator

// emaSeries returns the exponential moving average of values with the
// given span. The first defined entry is the simple average of the
// first span values; later entries follow the recurrence
//
//	ema = value*alpha + ema*(1-alpha), alpha = 2/(span+1)
//
// which matches the pandas ewm implementation with adjust=false.
// Entries before the seed are NaN.
func emaSeries(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 || len(values) < span {
		return out
	}

	seed := 0.0
	for i := 0; i < span; i++ {
		seed += values[i]
	}

	ema := seed / float64(span)
	out[span-1] = ema

	alpha := 2.0 / float64(span+1)
	for i := span; i < len(values); i++ {
		ema = values[i]*alpha + ema*(1-alpha)
		out[i] = ema
	}

	return out
}
