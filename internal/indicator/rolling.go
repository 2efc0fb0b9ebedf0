package indicator

import "math"

// nanSlice returns a slice of n NaN values, the insufficient-history
// sentinel used throughout the frame.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// rollingMax returns, at each index, the maximum over the trailing
// window ending at that index (inclusive). No lookahead: the value at
// bar i reflects only bars i-window+1..i. Entries with fewer than
// window bars of history are NaN.
func rollingMax(values []float64, window int) []float64 {
	out := nanSlice(len(values))

	for i := window - 1; i < len(values); i++ {
		max := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] > max {
				max = values[j]
			}
		}

		out[i] = max
	}

	return out
}

// rollingMin is the mirror of rollingMax.
func rollingMin(values []float64, window int) []float64 {
	out := nanSlice(len(values))

	for i := window - 1; i < len(values); i++ {
		min := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] < min {
				min = values[j]
			}
		}

		out[i] = min
	}

	return out
}

// rollingMean returns the simple moving average over the trailing
// window ending at each index. Entries with fewer than window bars of
// history are NaN.
func rollingMean(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += values[i]
	}

	out[window-1] = sum / float64(window)

	for i := window; i < len(values); i++ {
		sum += values[i] - values[i-window]
		out[i] = sum / float64(window)
	}

	return out
}
