package types

import (
	"time"

	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// Bar is a single OHLCV candle.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered-by-time sequence of bars, oldest first.
// Timestamps must be strictly increasing; gaps are allowed.
type Series []Bar

// Validate checks the strictly-increasing timestamp invariant.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidSeries,
				"bar %d timestamp %s is not after bar %d timestamp %s",
				i, s[i].Time, i-1, s[i-1].Time)
		}
	}

	return nil
}

// Last returns the most recent bar. The second return value is false
// for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}

	return s[len(s)-1], true
}

// Tail returns the trailing n bars, or the whole series when it is shorter.
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}

	return s[len(s)-n:]
}
