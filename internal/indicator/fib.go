package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// FibLookback is the default trailing window for retracement levels.
const FibLookback = 120

// fibRangeFloor keeps the range positive when the window is flat.
const fibRangeFloor = 1e-9

// FibLevels are retracement price levels computed from the high/low of
// a trailing lookback window. They are recomputed on every evaluation
// and never persisted.
type FibLevels struct {
	// L618 is the 61.8% retracement: high - 0.618*range.
	L618 float64
	// L500 is the midpoint: low + 0.5*range.
	L500 float64
	// L382 is the 38.2% retracement: high - 0.382*range.
	L382 float64
}

// Fib computes retracement levels over the trailing lookback bars.
// An empty series yields NaN levels, which no filter can satisfy.
func Fib(bars types.Series, lookback int) FibLevels {
	recent := bars.Tail(lookback)
	if len(recent) == 0 {
		nan := math.NaN()

		return FibLevels{L618: nan, L500: nan, L382: nan}
	}

	hi := recent[0].High
	lo := recent[0].Low

	for _, b := range recent[1:] {
		if b.High > hi {
			hi = b.High
		}

		if b.Low < lo {
			lo = b.Low
		}
	}

	rng := hi - lo
	if rng < fibRangeFloor {
		rng = fibRangeFloor
	}

	return FibLevels{
		L618: hi - 0.618*rng,
		L500: lo + 0.5*rng,
		L382: hi - 0.382*rng,
	}
}
