// Package gate enforces global and per-asset alert rate limits over
// rolling time windows. The windowed state is owned by the gate value
// rather than package globals, so multiple independent gates can live
// in one process.
package gate

import (
	"sync"
	"time"
)

// Limits configures the alert budget.
type Limits struct {
	// MaxPerHour caps alerts inside one hour window.
	MaxPerHour int
	// MaxPerDay caps alerts inside one day window.
	MaxPerDay int
	// Cooldown is the minimum gap between alerts for the same asset.
	Cooldown time.Duration
}

// DefaultLimits returns the standard budget: 3/hour, 10/day, 90 minutes
// per asset.
func DefaultLimits() Limits {
	return Limits{
		MaxPerHour: 3,
		MaxPerDay:  10,
		Cooldown:   90 * time.Minute,
	}
}

// rateLimitState is the mutable windowed budget. Counters reset when
// their window boundary is crossed (a sliding-reset, not a true
// sliding window); the state is never persisted, so the budget resets
// on process restart.
type rateLimitState struct {
	hourCount int
	dayCount  int
	hourStart time.Time
	dayStart  time.Time
	lastAlert map[string]time.Time
}

// Gate is the rate-limited alert gate. Safe for concurrent use: the
// shared counters are updated under a single mutex.
type Gate struct {
	mu     sync.Mutex
	limits Limits
	state  rateLimitState
}

// New creates a gate with empty state. Non-positive limits fall back
// to the defaults.
func New(limits Limits) *Gate {
	def := DefaultLimits()

	if limits.MaxPerHour <= 0 {
		limits.MaxPerHour = def.MaxPerHour
	}

	if limits.MaxPerDay <= 0 {
		limits.MaxPerDay = def.MaxPerDay
	}

	if limits.Cooldown <= 0 {
		limits.Cooldown = def.Cooldown
	}

	return &Gate{
		limits: limits,
		state: rateLimitState{
			lastAlert: make(map[string]time.Time),
		},
	}
}

// CanSend reports whether an alert for the asset may be emitted at
// now. It rolls the hour/day windows first, then checks the global
// caps (denying at exactly the cap, not above it) and finally the
// per-asset cooldown. An asset that never alerted is eligible
// immediately.
func (g *Gate) CanSend(asset string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.roll(now)

	if g.state.hourCount >= g.limits.MaxPerHour || g.state.dayCount >= g.limits.MaxPerDay {
		return false
	}

	last, ok := g.state.lastAlert[asset]
	if !ok {
		return true
	}

	return now.Sub(last) >= g.limits.Cooldown
}

// Record books one emitted alert for the asset. Call it exactly once
// per emitted alert, after the decision to emit: double-counting
// corrupts the budget.
func (g *Gate) Record(asset string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.roll(now)
	g.state.hourCount++
	g.state.dayCount++
	g.state.lastAlert[asset] = now
}

// Counts returns the current hourly and daily counters after rolling
// the windows to now.
func (g *Gate) Counts(now time.Time) (hourly, daily int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.roll(now)

	return g.state.hourCount, g.state.dayCount
}

// roll resets any window whose boundary has been reached. The day
// rollover also clears the per-asset cooldown map. Callers must hold
// the mutex.
func (g *Gate) roll(now time.Time) {
	if g.state.hourStart.IsZero() || now.Sub(g.state.hourStart) >= time.Hour {
		g.state.hourCount = 0
		g.state.hourStart = now
	}

	if g.state.dayStart.IsZero() || now.Sub(g.state.dayStart) >= 24*time.Hour {
		g.state.dayCount = 0
		g.state.dayStart = now
		g.state.lastAlert = make(map[string]time.Time)
	}
}
