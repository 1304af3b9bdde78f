package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() Config {
	return Config{
		ScoutBonusPct:         dec("10"),
		MinimumPerParticipant: dec("100"),
		MinimumPayout:         dec("1"),
	}
}

// group builds an eligible group keyed by main character ID.
func group(id int64, name string, scout, excluded bool) *Group {
	return &Group{
		MainCharacterID:   id,
		MainCharacterName: name,
		IsScout:           scout,
		Excluded:          excluded,
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		corpPct      string
		cfg          Config
		groups       map[int64]*Group
		validateFunc func(t *testing.T, r Result)
	}{
		{
			name:    "two regulars and two scouts, ten percent cut and bonus",
			total:   "100000000.00",
			corpPct: "10",
			cfg:     testConfig(),
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, false),
				2: group(2, "Bravo", false, false),
				3: group(3, "Charlie", true, false),
				4: group(4, "Delta", true, false),
			},
			validateFunc: func(t *testing.T, r Result) {
				assert.True(t, r.CorpShare.Equal(dec("10000000.00")), "corp share = %s", r.CorpShare)
				assert.True(t, r.BaseShare.Equal(dec("21428571.42")), "base share = %s", r.BaseShare)
				assert.True(t, r.ScoutShare.Equal(dec("23571428.57")), "scout share = %s", r.ScoutShare)
				assert.True(t, r.ScoutBonus.Equal(dec("2142857.15")), "scout bonus = %s", r.ScoutBonus)
				assert.Equal(t, 4, r.EligibleCount)
				assert.Equal(t, 2, r.ScoutCount)
				assert.Equal(t, 2, r.RegularCount)
				require.Len(t, r.Shares, 4)
				assert.True(t, r.TotalDistributed.LessThanOrEqual(dec("90000000.00")))
				// Rounding remainder swept to the corporation.
				assert.True(t, r.FinalCorpShare.Equal(dec("10000000.02")), "final corp = %s", r.FinalCorpShare)
			},
		},
		{
			name:    "zero value pool",
			total:   "0",
			corpPct: "10",
			cfg:     testConfig(),
			groups:  map[int64]*Group{1: group(1, "Alpha", false, false)},
			validateFunc: func(t *testing.T, r Result) {
				assert.Empty(t, r.Shares)
				assert.True(t, r.FinalCorpShare.Equal(dec("0")))
			},
		},
		{
			name:    "all groups excluded",
			total:   "50000000.00",
			corpPct: "10",
			cfg:     testConfig(),
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, true),
				2: group(2, "Bravo", true, true),
			},
			validateFunc: func(t *testing.T, r Result) {
				assert.Empty(t, r.Shares)
				assert.True(t, r.FinalCorpShare.Equal(dec("50000000.00")), "whole pool to corp, got %s", r.FinalCorpShare)
			},
		},
		{
			name:    "excluded group gets no payout, others unaffected by redistribution",
			total:   "1000.00",
			corpPct: "0",
			cfg:     testConfig(),
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, false),
				2: group(2, "Bravo", false, true),
				3: group(3, "Charlie", false, false),
			},
			validateFunc: func(t *testing.T, r Result) {
				require.Len(t, r.Shares, 2)
				for _, s := range r.Shares {
					assert.NotEqual(t, int64(2), s.MainCharacterID)
					assert.True(t, s.Amount.Equal(dec("500.00")))
				}
			},
		},
		{
			name:    "base share below minimum per participant aborts whole distribution",
			total:   "1000.00",
			corpPct: "10",
			cfg: Config{
				ScoutBonusPct:         dec("10"),
				MinimumPerParticipant: dec("100000000"),
				MinimumPayout:         dec("1"),
			},
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, false),
				2: group(2, "Bravo", false, false),
			},
			validateFunc: func(t *testing.T, r Result) {
				assert.Empty(t, r.Shares)
				assert.True(t, r.FinalCorpShare.Equal(dec("1000.00")))
			},
		},
		{
			name:    "zero scout bonus makes scout and base shares equal",
			total:   "9000.00",
			corpPct: "0",
			cfg: Config{
				ScoutBonusPct:         dec("0"),
				MinimumPerParticipant: dec("0"),
				MinimumPayout:         dec("0"),
			},
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, false),
				2: group(2, "Bravo", true, false),
			},
			validateFunc: func(t *testing.T, r Result) {
				assert.True(t, r.ScoutShare.Equal(r.BaseShare))
				assert.True(t, r.ScoutBonus.IsZero())
			},
		},
		{
			name:    "scout share exceeds base share when bonus positive",
			total:   "100000.00",
			corpPct: "5",
			cfg:     testConfig(),
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, false),
				2: group(2, "Bravo", true, false),
			},
			validateFunc: func(t *testing.T, r Result) {
				assert.True(t, r.ScoutShare.GreaterThan(r.BaseShare))
			},
		},
		{
			name:    "zero corp percentage gives whole pool to participants minus rounding",
			total:   "100.00",
			corpPct: "0",
			cfg: Config{
				ScoutBonusPct:         dec("10"),
				MinimumPerParticipant: dec("0"),
				MinimumPayout:         dec("0"),
			},
			groups: map[int64]*Group{
				1: group(1, "Alpha", false, false),
				2: group(2, "Bravo", false, false),
				3: group(3, "Charlie", false, false),
			},
			validateFunc: func(t *testing.T, r Result) {
				assert.True(t, r.CorpShare.IsZero())
				// 100 / 3 floors to 33.33 each; 0.01 remainder to corp.
				assert.True(t, r.BaseShare.Equal(dec("33.33")))
				assert.True(t, r.FinalCorpShare.Equal(dec("0.01")), "final corp = %s", r.FinalCorpShare)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Calculate(dec(tt.total), dec(tt.corpPct), tt.cfg, tt.groups)
			tt.validateFunc(t, r)
		})
	}
}

// Total value must be conserved exactly: distributed + final corp == total.
func TestCalculateConservation(t *testing.T) {
	totals := []string{"100000000.00", "12345.67", "0.07", "999999999.99", "1000.01"}
	groups := map[int64]*Group{
		1: group(1, "Alpha", false, false),
		2: group(2, "Bravo", true, false),
		3: group(3, "Charlie", false, false),
		4: group(4, "Delta", true, false),
		5: group(5, "Echo", false, true),
		6: group(6, "Foxtrot", false, false),
		7: group(7, "Golf", true, false),
	}
	cfg := Config{
		ScoutBonusPct:         dec("10"),
		MinimumPerParticipant: dec("0"),
		MinimumPayout:         dec("0"),
	}

	for _, total := range totals {
		t.Run(total, func(t *testing.T) {
			tv := dec(total)
			r := Calculate(tv, dec("10"), cfg, groups)
			sum := r.TotalDistributed.Add(r.FinalCorpShare)
			assert.True(t, sum.Equal(tv), "distributed %s + corp %s = %s, want %s",
				r.TotalDistributed, r.FinalCorpShare, sum, tv)
			for _, s := range r.Shares {
				assert.False(t, s.Amount.IsNegative())
				assert.True(t, s.Amount.Equal(s.Amount.RoundDown(2)), "amount %s not quantized", s.Amount)
			}
		})
	}
}

// A per-person skip is not redistributed: the skipped share flows to
// the corporation through the remainder sweep.
func TestCalculateMinimumPayoutSkip(t *testing.T) {
	cfg := Config{
		ScoutBonusPct:         dec("10"),
		MinimumPerParticipant: dec("0"),
		MinimumPayout:         dec("100"),
	}
	groups := map[int64]*Group{
		1: group(1, "Alpha", false, false),
		2: group(2, "Bravo", true, false),
	}
	// total_shares = 2.1, pool 200 -> base 95.23 (below 100, skipped),
	// scout 104.76 (paid).
	r := Calculate(dec("200.00"), dec("0"), cfg, groups)
	require.Len(t, r.Shares, 1)
	assert.True(t, r.Shares[0].IsScout)
	assert.True(t, r.Shares[0].Amount.Equal(dec("104.76")), "scout amount = %s", r.Shares[0].Amount)
	assert.True(t, r.TotalDistributed.Equal(dec("104.76")))
	assert.True(t, r.FinalCorpShare.Equal(dec("95.24")), "final corp = %s", r.FinalCorpShare)
}

func TestCalculateDeterministicOrder(t *testing.T) {
	groups := map[int64]*Group{
		30: group(30, "Charlie", false, false),
		10: group(10, "Alpha", false, false),
		20: group(20, "Bravo", false, false),
	}
	cfg := Config{ScoutBonusPct: dec("10")}
	r := Calculate(dec("3000.00"), dec("0"), cfg, groups)
	require.Len(t, r.Shares, 3)
	assert.Equal(t, int64(10), r.Shares[0].MainCharacterID)
	assert.Equal(t, int64(20), r.Shares[1].MainCharacterID)
	assert.Equal(t, int64(30), r.Shares[2].MainCharacterID)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())
	assert.Error(t, Config{ScoutBonusPct: dec("-1")}.Validate())
	assert.Error(t, Config{MinimumPerParticipant: dec("-1")}.Validate())
	assert.Error(t, Config{MinimumPayout: dec("-0.01")}.Validate())
}
