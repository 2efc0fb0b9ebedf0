// Package config loads the scanner configuration: defaults in code, an
// optional YAML file on top, and secrets from the environment (with
// .env support for local runs).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RateLimitConfig bounds the alert budget.
type RateLimitConfig struct {
	MaxPerHour      int `yaml:"max_per_hour" validate:"gte=1"`
	MaxPerDay       int `yaml:"max_per_day" validate:"gte=1"`
	CooldownMinutes int `yaml:"cooldown_minutes" validate:"gte=1"`
}

// DerivativesConfig tunes the positioning thresholds.
type DerivativesConfig struct {
	// FundingHigh and FundingLow are funding-rate fractions per 8h.
	FundingHigh float64 `yaml:"funding_high" validate:"gt=0"`
	FundingLow  float64 `yaml:"funding_low" validate:"gt=0"`
	// OIChange1hPct is the open-interest 1h percent-change threshold.
	OIChange1hPct float64 `yaml:"oi_change_1h_pct" validate:"gt=0"`
}

// ConfirmationConfig selects the gating mode per confirmation source.
type ConfirmationConfig struct {
	// OnChainGate makes on-chain confirmation a hard gate for assets
	// with a configured chain.
	OnChainGate bool `yaml:"onchain_gate"`
	// DerivativesGate makes crowded aligned positioning a hard gate.
	DerivativesGate bool `yaml:"derivatives_gate"`
}

// Config is the full scanner configuration.
type Config struct {
	// Universe is the core list of asset symbols to always scan.
	Universe []string `yaml:"universe" validate:"min=1"`
	// QuoteSuffix builds exchange pairs from symbols, e.g. "USDT".
	QuoteSuffix string `yaml:"quote_suffix" validate:"required"`
	// ScanIntervalMin is the pause between scan cycles in minutes.
	ScanIntervalMin int `yaml:"scan_interval_min" validate:"gte=1"`
	// SummaryHours is the checkpoint notification interval.
	SummaryHours int `yaml:"summary_hours" validate:"gte=1"`
	// HistoryBars is how many daily bars to request per asset.
	HistoryBars int `yaml:"history_bars" validate:"gte=200"`
	// TopListings extends the universe with the top N listings by
	// market cap; 0 disables the extension.
	TopListings int `yaml:"top_listings" validate:"gte=0"`
	// Chains maps asset symbols to chain identifiers for on-chain
	// confirmation. Assets without a mapping are auto-confirmed.
	Chains map[string]string `yaml:"chains"`

	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Confirmation ConfirmationConfig `yaml:"confirmation"`
	Derivatives  DerivativesConfig  `yaml:"derivatives"`

	// RecordOnFailure burns alert budget even when delivery fails,
	// matching the behavior of recording before the sink confirms.
	RecordOnFailure bool `yaml:"record_on_failure"`

	// LogLevel is a zap level name.
	LogLevel string `yaml:"log_level"`

	// Secrets, environment only.
	CMCAPIKey       string `yaml:"-"`
	CoinglassAPIKey string `yaml:"-"`
	CoinglassBase   string `yaml:"-"`
	DiscordWebhook  string `yaml:"-"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Universe:        []string{"ARB", "ONDO", "SEI", "SUI"},
		QuoteSuffix:     "USDT",
		ScanIntervalMin: 60,
		SummaryHours:    4,
		HistoryBars:     220,
		TopListings:     100,
		Chains: map[string]string{
			"ARB":  "arbitrum",
			"ONDO": "ethereum",
			"SEI":  "sei",
			"SUI":  "sui",
			"BTC":  "bitcoin",
			"ETH":  "ethereum",
			"SOL":  "solana",
			"TON":  "ton",
			"DOGE": "dogecoin",
			"AVAX": "avalanche",
			"LINK": "ethereum",
			"OP":   "optimism",
		},
		RateLimit: RateLimitConfig{
			MaxPerHour:      3,
			MaxPerDay:       10,
			CooldownMinutes: 90,
		},
		Confirmation: ConfirmationConfig{
			OnChainGate: true,
		},
		Derivatives: DerivativesConfig{
			FundingHigh:   0.0015,
			FundingLow:    0.0008,
			OIChange1hPct: 3,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (if non-empty), then environment secrets. envFile points at an
// explicit .env file; when empty, ./.env is loaded best-effort.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load env file", err)
		}
	} else {
		// Missing ./.env is fine; real deployments use the environment.
		_ = godotenv.Load()
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config file", err)
		}
	}

	cfg.CMCAPIKey = strings.TrimSpace(os.Getenv("CMC_API_KEY"))
	cfg.CoinglassAPIKey = strings.TrimSpace(os.Getenv("COINGLASS_API_KEY"))
	cfg.CoinglassBase = strings.TrimSpace(os.Getenv("COINGLASS_BASE"))
	cfg.DiscordWebhook = strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK"))

	for i, s := range cfg.Universe {
		cfg.Universe[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid scanner config", err)
	}

	return nil
}

// ScanInterval returns the pause between scan cycles.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalMin) * time.Minute
}

// SummaryInterval returns the checkpoint notification interval.
func (c *Config) SummaryInterval() time.Duration {
	return time.Duration(c.SummaryHours) * time.Hour
}

// Cooldown returns the per-asset alert cooldown.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.RateLimit.CooldownMinutes) * time.Minute
}
