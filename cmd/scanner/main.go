package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-scanner/internal/config"
	"github.com/rxtech-lab/argo-scanner/internal/confirm"
	"github.com/rxtech-lab/argo-scanner/internal/gate"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/pattern"
	"github.com/rxtech-lab/argo-scanner/internal/scanner"
	"github.com/rxtech-lab/argo-scanner/internal/version"
	"github.com/rxtech-lab/argo-scanner/pkg/derivatives"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata"
	"github.com/rxtech-lab/argo-scanner/pkg/notify"
	"github.com/rxtech-lab/argo-scanner/pkg/onchain"
	"github.com/rxtech-lab/argo-scanner/pkg/universe"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// scanAction loads config, wires the pipeline and runs the scan loop
// (or a single cycle with --once).
func scanAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	universeProvider := universe.New(appLogger, cfg.CMCAPIKey, cfg.Universe, cfg.TopListings)

	notifier := buildNotifier(cfg, appLogger)

	scan := scanner.New(scanner.Options{
		Logger:   appLogger,
		Market:   marketdata.NewBinanceSource(cfg.QuoteSuffix),
		Universe: universeProvider,
		OnChain:  onchain.NewClient(),
		Derivatives: derivatives.NewClient(
			cfg.CoinglassAPIKey, cfg.CoinglassBase, cfg.QuoteSuffix),
		Notifier: notifier,
		Matcher:  pattern.NewMatcher(pattern.DefaultConfig()),
		Scorer: confirm.NewScorer(confirm.Config{
			OnChain: confirm.DefaultOnChainThresholds(),
			Derivatives: confirm.DerivativeThresholds{
				FundingHigh:   cfg.Derivatives.FundingHigh,
				FundingLow:    cfg.Derivatives.FundingLow,
				OIChange1hPct: cfg.Derivatives.OIChange1hPct,
			},
			OnChainGates:    cfg.Confirmation.OnChainGate,
			DerivativesGate: cfg.Confirmation.DerivativesGate,
		}),
		Gate: gate.New(gate.Limits{
			MaxPerHour: cfg.RateLimit.MaxPerHour,
			MaxPerDay:  cfg.RateLimit.MaxPerDay,
			Cooldown:   cfg.Cooldown(),
		}),
		Chains:          cfg.Chains,
		HistoryBars:     cfg.HistoryBars,
		ScanInterval:    cfg.ScanInterval(),
		SummaryInterval: cfg.SummaryInterval(),
		RecordOnFailure: cfg.RecordOnFailure,
	})

	logStartup(ctx, appLogger, universeProvider, cfg)

	if cmd.Bool("once") {
		scan.ScanOnce(ctx)

		return nil
	}

	if err := scan.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}

func buildNotifier(cfg *config.Config, appLogger *logger.Logger) notify.Notifier {
	if cfg.DiscordWebhook == "" {
		appLogger.Warn("no Discord webhook configured, logging alerts instead")

		return notify.NewLogNotifier(appLogger)
	}

	return notify.NewDiscordNotifier(cfg.DiscordWebhook)
}

func logStartup(ctx context.Context, appLogger *logger.Logger, provider *universe.Provider, cfg *config.Config) {
	fields := []zap.Field{
		zap.Strings("core_universe", cfg.Universe),
		zap.Int("top_listings", cfg.TopListings),
		zap.Duration("scan_interval", cfg.ScanInterval()),
	}

	totalMcap, btcDominance := provider.GlobalMetrics(ctx)

	if v, err := totalMcap.Take(); err == nil {
		fields = append(fields, zap.Float64("total_mcap_usd", v))
	}

	if v, err := btcDominance.Take(); err == nil {
		fields = append(fields, zap.Float64("btc_dominance_pct", v))
	}

	appLogger.Info("scanner starting", fields...)
}

func main() {
	cmd := &cli.Command{
		Name:    "scanner",
		Usage:   "Scan crypto markets for breakout-and-retest setups and alert on confirmed signals",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single scan cycle and exit",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file with API keys and the webhook URL",
			},
		},
		Action: scanAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
