package types

import (
	"fmt"
	"time"
)

// Direction is the side of a trade setup.
type Direction string

const (
	// DirectionLong is a breakout-and-retest setup above resistance.
	DirectionLong Direction = "long"
	// DirectionShort is a breakdown-and-retest setup below support.
	DirectionShort Direction = "short"
)

// TradeSignal is a fully-qualified alert: a pattern match with the
// stop/target arithmetic already applied. It is emitted once and not
// retained by the engine beyond gating bookkeeping.
type TradeSignal struct {
	// ID uniquely identifies this alert.
	ID string
	// Symbol is the asset identifier, e.g. "ARB".
	Symbol string
	// Direction is the trade side.
	Direction Direction
	// Entry is the close price the setup triggered at.
	Entry float64
	// Stop is the ATR-derived protective stop.
	Stop float64
	// Targets are the two price targets at 2x and 3x risk, nearest first.
	Targets [2]float64
	// RSI is the momentum oscillator readout at the trigger bar.
	RSI float64
	// MACDHist is the trend-momentum histogram readout at the trigger bar.
	MACDHist float64
	// Confirmation is the human-readable confirmation annotation.
	Confirmation string
	// Time is the timestamp of the trigger bar.
	Time time.Time
}

// Message renders the alert text delivered to the notification sink.
func (s TradeSignal) Message() string {
	tag := "[BUY]"
	if s.Direction == DirectionShort {
		tag = "[SELL]"
	}

	msg := fmt.Sprintf("%s %s @ %.6f | Lvg 3-5x | SL %.6f | TP %.6f/%.6f | RSI %.1f MACDh %.4f",
		tag, s.Symbol, s.Entry, s.Stop, s.Targets[0], s.Targets[1], s.RSI, s.MACDHist)
	if s.Confirmation != "" {
		msg += " | " + s.Confirmation
	}

	return msg
}
