// Package config loads server configuration from the environment and
// an optional yaml file. The payout engine itself never reads from
// here at calculation time: Config hands it an explicit, validated
// payout.Config up front.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fleetpay/fleetpay/internal/payout"
	"github.com/fleetpay/fleetpay/internal/pricing"
)

// Config is the resolved server configuration.
type Config struct {
	ListenAddr string
	DBPath     string

	JaniceAPIKey    string
	JaniceMarket    string
	JanicePriceType string
	JaniceTimeout   time.Duration
	JaniceCacheTTL  time.Duration

	CorpSharePct          decimal.Decimal
	ScoutBonusPct         decimal.Decimal
	MinimumPayout         decimal.Decimal
	MinimumPerParticipant decimal.Decimal

	VerificationWindow time.Duration
}

// Load reads configuration from FLEETPAY_* environment variables and,
// if present, a fleetpay.yaml in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("fleetpay")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("fleetpay")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_path", "./data/fleetpay.db")
	v.SetDefault("janice_api_key", "")
	v.SetDefault("janice_market", "jita")
	v.SetDefault("janice_price_type", "buy")
	v.SetDefault("janice_timeout", "30s")
	v.SetDefault("janice_cache_ttl", "1h")
	v.SetDefault("corp_share_pct", "10")
	v.SetDefault("scout_bonus_pct", "10")
	v.SetDefault("minimum_payout", "1000000")
	v.SetDefault("minimum_per_participant", "100000000")
	v.SetDefault("verification_window", "24h")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, env and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:         v.GetString("listen_addr"),
		DBPath:             v.GetString("db_path"),
		JaniceAPIKey:       v.GetString("janice_api_key"),
		JaniceMarket:       v.GetString("janice_market"),
		JanicePriceType:    v.GetString("janice_price_type"),
		JaniceTimeout:      v.GetDuration("janice_timeout"),
		JaniceCacheTTL:     v.GetDuration("janice_cache_ttl"),
		VerificationWindow: v.GetDuration("verification_window"),
	}

	var err error
	if cfg.CorpSharePct, err = decimal.NewFromString(v.GetString("corp_share_pct")); err != nil {
		return nil, fmt.Errorf("invalid corp_share_pct: %w", err)
	}
	if cfg.ScoutBonusPct, err = decimal.NewFromString(v.GetString("scout_bonus_pct")); err != nil {
		return nil, fmt.Errorf("invalid scout_bonus_pct: %w", err)
	}
	if cfg.MinimumPayout, err = decimal.NewFromString(v.GetString("minimum_payout")); err != nil {
		return nil, fmt.Errorf("invalid minimum_payout: %w", err)
	}
	if cfg.MinimumPerParticipant, err = decimal.NewFromString(v.GetString("minimum_per_participant")); err != nil {
		return nil, fmt.Errorf("invalid minimum_per_participant: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.CorpSharePct.IsNegative() || c.CorpSharePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("corp_share_pct must be within 0-100, got %s", c.CorpSharePct)
	}
	if c.VerificationWindow <= 0 {
		return fmt.Errorf("verification_window must be positive, got %s", c.VerificationWindow)
	}
	return c.PayoutConfig().Validate()
}

// PayoutConfig builds the explicit calculator configuration.
func (c *Config) PayoutConfig() payout.Config {
	return payout.Config{
		ScoutBonusPct:         c.ScoutBonusPct,
		MinimumPerParticipant: c.MinimumPerParticipant,
		MinimumPayout:         c.MinimumPayout,
	}
}

// JaniceConfig builds the appraisal client configuration.
func (c *Config) JaniceConfig() pricing.JaniceConfig {
	return pricing.JaniceConfig{
		APIKey:    c.JaniceAPIKey,
		Market:    c.JaniceMarket,
		PriceType: c.JanicePriceType,
		Timeout:   c.JaniceTimeout,
		CacheTTL:  c.JaniceCacheTTL,
	}
}
