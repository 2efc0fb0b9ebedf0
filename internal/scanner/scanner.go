// Package scanner runs the scan cycle: it walks the asset universe,
// computes indicators, evaluates the pattern, applies confirmation and
// the alert gate, and delivers accepted signals to the notifier. One
// failing asset never aborts a cycle.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/confirm"
	"github.com/rxtech-lab/argo-scanner/internal/gate"
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/pattern"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata"
	"github.com/rxtech-lab/argo-scanner/pkg/notify"
	"go.uber.org/zap"
)

// UniverseSource lists the symbols to scan this cycle.
type UniverseSource interface {
	Symbols(ctx context.Context) []string
}

// OnChainSource provides chain activity snapshots.
type OnChainSource interface {
	Snapshot(ctx context.Context, chain string) types.ChainSnapshot
}

// DerivativesSource provides positioning snapshots. Enabled reports
// whether the source has credentials at all.
type DerivativesSource interface {
	Enabled() bool
	Snapshot(ctx context.Context, symbol string, price float64) types.DerivativesSnapshot
}

// Options wires the scanner's dependencies. Market, Universe and
// Notifier are required; OnChain and Derivatives may be nil.
type Options struct {
	Logger      *logger.Logger
	Market      marketdata.Source
	Universe    UniverseSource
	OnChain     OnChainSource
	Derivatives DerivativesSource
	Notifier    notify.Notifier
	Matcher     *pattern.Matcher
	Scorer      *confirm.Scorer
	Gate        *gate.Gate

	// Chains maps symbols to chain identifiers for on-chain lookups.
	Chains map[string]string
	// HistoryBars is the candle depth requested per asset.
	HistoryBars int
	// ScanInterval is the pause between cycles in Run.
	ScanInterval time.Duration
	// SummaryInterval is the gap between checkpoint notifications.
	SummaryInterval time.Duration
	// RecordOnFailure books the alert budget even when delivery fails.
	// Off by default: a failed delivery should not consume budget.
	RecordOnFailure bool

	// Now overrides the clock. Intended for tests.
	Now func() time.Time
}

// Scanner is the scan orchestrator.
type Scanner struct {
	logger      *logger.Logger
	market      marketdata.Source
	universe    UniverseSource
	onchain     OnChainSource
	derivatives DerivativesSource
	notifier    notify.Notifier
	matcher     *pattern.Matcher
	scorer      *confirm.Scorer
	gate        *gate.Gate

	chains          map[string]string
	historyBars     int
	scanInterval    time.Duration
	summaryInterval time.Duration
	recordOnFailure bool

	now func() time.Time
}

// New creates a scanner. Zero-valued tunables fall back to defaults.
func New(opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	if opts.Matcher == nil {
		opts.Matcher = pattern.NewMatcher(pattern.DefaultConfig())
	}

	if opts.Scorer == nil {
		opts.Scorer = confirm.NewScorer(confirm.DefaultConfig())
	}

	if opts.Gate == nil {
		opts.Gate = gate.New(gate.DefaultLimits())
	}

	if opts.HistoryBars < pattern.MinBars {
		opts.HistoryBars = 220
	}

	if opts.ScanInterval <= 0 {
		opts.ScanInterval = time.Hour
	}

	if opts.SummaryInterval <= 0 {
		opts.SummaryInterval = 4 * time.Hour
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scanner{
		logger:          opts.Logger,
		market:          opts.Market,
		universe:        opts.Universe,
		onchain:         opts.OnChain,
		derivatives:     opts.Derivatives,
		notifier:        opts.Notifier,
		matcher:         opts.Matcher,
		scorer:          opts.Scorer,
		gate:            opts.Gate,
		chains:          opts.Chains,
		historyBars:     opts.HistoryBars,
		scanInterval:    opts.ScanInterval,
		summaryInterval: opts.SummaryInterval,
		recordOnFailure: opts.RecordOnFailure,
		now:             opts.Now,
	}
}

// ScanOnce runs a single cycle over the universe and returns the
// signals that were delivered. Per-asset errors are logged and skipped.
func (s *Scanner) ScanOnce(ctx context.Context) []types.TradeSignal {
	symbols := s.universe.Symbols(ctx)
	s.logger.Info("scan cycle started", zap.Int("assets", len(symbols)))

	var emitted []types.TradeSignal

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}

		sig, err := s.scanAsset(ctx, symbol)
		if err != nil {
			s.logger.Error("asset scan failed", zap.String("symbol", symbol), zap.Error(err))

			continue
		}

		if sig != nil {
			emitted = append(emitted, *sig)
		}
	}

	s.logger.Info("scan cycle finished", zap.Int("signals", len(emitted)))

	return emitted
}

// scanAsset runs the full pipeline for one symbol. A nil, nil return
// means no alert was emitted for a legitimate reason (no setup, gated,
// insufficient history).
func (s *Scanner) scanAsset(ctx context.Context, symbol string) (*types.TradeSignal, error) {
	series, err := s.market.Candles(ctx, symbol, s.historyBars)
	if err != nil {
		return nil, err
	}

	if len(series) < pattern.MinBars {
		s.logger.Debug("insufficient history", zap.String("symbol", symbol), zap.Int("bars", len(series)))

		return nil, nil
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	frame := indicator.Compute(series)

	sig, err := s.matcher.Evaluate(symbol, frame).Take()
	if err != nil {
		return nil, nil
	}

	res := s.scorer.Score(sig.Direction, s.chainSnapshot(ctx, symbol), s.derivativesSnapshot(ctx, symbol, sig.Entry))
	if !res.Pass {
		s.logger.Info("signal rejected by confirmation",
			zap.String("symbol", symbol),
			zap.String("direction", string(sig.Direction)),
			zap.String("detail", res.Annotation))

		return nil, nil
	}

	sig.Confirmation = res.Annotation

	now := s.now()

	if !s.gate.CanSend(symbol, now) {
		s.logger.Info("signal suppressed by rate limit", zap.String("symbol", symbol))

		return nil, nil
	}

	if err := s.notifier.Send(ctx, sig.Message()); err != nil {
		s.logger.Warn("alert delivery failed", zap.String("symbol", symbol), zap.Error(err))

		if !s.recordOnFailure {
			return nil, nil
		}
	}

	s.gate.Record(symbol, now)
	s.logger.Info("alert emitted",
		zap.String("symbol", symbol),
		zap.String("direction", string(sig.Direction)),
		zap.Float64("entry", sig.Entry))

	return &sig, nil
}

// chainSnapshot fetches on-chain metrics when the symbol has a
// configured chain and a source is wired, and None otherwise.
func (s *Scanner) chainSnapshot(ctx context.Context, symbol string) optional.Option[types.ChainSnapshot] {
	if s.onchain == nil {
		return optional.None[types.ChainSnapshot]()
	}

	chain, ok := s.chains[symbol]
	if !ok || chain == "" {
		return optional.None[types.ChainSnapshot]()
	}

	return optional.Some(s.onchain.Snapshot(ctx, chain))
}

func (s *Scanner) derivativesSnapshot(ctx context.Context, symbol string, price float64) optional.Option[types.DerivativesSnapshot] {
	if s.derivatives == nil || !s.derivatives.Enabled() {
		return optional.None[types.DerivativesSnapshot]()
	}

	return optional.Some(s.derivatives.Snapshot(ctx, symbol, price))
}

// Run scans immediately, then on every tick until the context is
// cancelled. A checkpoint notification goes out once per summary
// interval so a quiet channel still proves the process is alive.
func (s *Scanner) Run(ctx context.Context) error {
	s.ScanOnce(ctx)

	lastSummary := s.now()

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner stopping")

			return ctx.Err()
		case <-ticker.C:
			s.ScanOnce(ctx)

			if now := s.now(); now.Sub(lastSummary) >= s.summaryInterval {
				s.sendSummary(ctx, now)
				lastSummary = now
			}
		}
	}
}

func (s *Scanner) sendSummary(ctx context.Context, now time.Time) {
	hourly, daily := s.gate.Counts(now)
	text := fmt.Sprintf("[checkpoint] scanner alive | alerts %d this hour, %d today", hourly, daily)

	if err := s.notifier.Send(ctx, text); err != nil {
		s.logger.Warn("summary delivery failed", zap.Error(err))
	}
}
