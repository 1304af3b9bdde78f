package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "./data/fleetpay.db", cfg.DBPath)
	assert.Equal(t, "jita", cfg.JaniceMarket)
	assert.Equal(t, "buy", cfg.JanicePriceType)
	assert.Equal(t, 30*time.Second, cfg.JaniceTimeout)
	assert.Equal(t, time.Hour, cfg.JaniceCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.VerificationWindow)

	assert.True(t, cfg.CorpSharePct.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.ScoutBonusPct.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.MinimumPayout.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, cfg.MinimumPerParticipant.Equal(decimal.NewFromInt(100_000_000)))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FLEETPAY_LISTEN_ADDR", ":9999")
	t.Setenv("FLEETPAY_CORP_SHARE_PCT", "7.5")
	t.Setenv("FLEETPAY_SCOUT_BONUS_PCT", "20")
	t.Setenv("FLEETPAY_JANICE_API_KEY", "test-key")
	t.Setenv("FLEETPAY_VERIFICATION_WINDOW", "48h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "test-key", cfg.JaniceAPIKey)
	assert.Equal(t, 48*time.Hour, cfg.VerificationWindow)
	assert.True(t, cfg.CorpSharePct.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, cfg.ScoutBonusPct.Equal(decimal.NewFromInt(20)))

	pc := cfg.PayoutConfig()
	require.NoError(t, pc.Validate())
	assert.True(t, pc.ScoutBonusPct.Equal(decimal.NewFromInt(20)))
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"corp share over 100", "FLEETPAY_CORP_SHARE_PCT", "101"},
		{"negative corp share", "FLEETPAY_CORP_SHARE_PCT", "-1"},
		{"corp share not a number", "FLEETPAY_CORP_SHARE_PCT", "ten"},
		{"negative scout bonus", "FLEETPAY_SCOUT_BONUS_PCT", "-5"},
		{"negative minimum payout", "FLEETPAY_MINIMUM_PAYOUT", "-1"},
		{"zero verification window", "FLEETPAY_VERIFICATION_WINDOW", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
