package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpay/fleetpay/internal/models"
)

// The summary must reproduce the calculator's arithmetic exactly so a
// preview matches materialization.
func TestSummarizeMatchesCalculate(t *testing.T) {
	groups := map[int64]*Group{
		1: group(1, "Alpha", false, false),
		2: group(2, "Bravo", false, false),
		3: group(3, "Charlie", true, false),
		4: group(4, "Delta", true, false),
		5: group(5, "Echo", false, true),
	}
	cfg := Config{ScoutBonusPct: dec("10")}
	total := dec("100000000.00")

	r := Calculate(total, dec("10"), cfg, groups)
	s := Summarize(total, dec("10"), cfg, groups, nil)

	assert.True(t, s.CorpShare.Equal(r.CorpShare))
	assert.True(t, s.ParticipantPool.Equal(r.ParticipantPool))
	assert.True(t, s.BaseShare.Equal(r.BaseShare))
	assert.True(t, s.ScoutShare.Equal(r.ScoutShare))
	assert.True(t, s.ScoutBonus.Equal(r.ScoutBonus))
	assert.Equal(t, r.EligibleCount, s.EligibleCount)
	assert.Equal(t, r.ScoutCount, s.ScoutCount)
	assert.Equal(t, r.RegularCount, s.RegularCount)
}

func TestSummarizeReconcilesPersistedPayouts(t *testing.T) {
	groups := map[int64]*Group{
		1: group(1, "Alpha", false, false),
		2: group(2, "Bravo", true, false),
	}
	cfg := Config{ScoutBonusPct: dec("10")}
	total := dec("21000.00")

	r := Calculate(total, dec("0"), cfg, groups)
	require.Len(t, r.Shares, 2)

	persisted := make([]models.Payout, 0, len(r.Shares))
	for _, sh := range r.Shares {
		persisted = append(persisted, models.Payout{
			RecipientID: sh.MainCharacterID,
			Amount:      sh.Amount,
		})
	}

	s := Summarize(total, dec("0"), cfg, groups, persisted)
	assert.True(t, s.TotalPayouts.Equal(r.TotalDistributed))
	assert.True(t, s.FinalCorpShare.Equal(r.FinalCorpShare), "summary corp %s, calc corp %s", s.FinalCorpShare, r.FinalCorpShare)

	// Zero drift: payouts plus corp share cover the pool exactly.
	assert.True(t, s.TotalPayouts.Add(s.FinalCorpShare).Equal(total))
}

func TestSummarizeEmptyRoster(t *testing.T) {
	s := Summarize(dec("5000.00"), dec("10"), Config{ScoutBonusPct: dec("10")}, nil, nil)
	assert.Equal(t, 0, s.EligibleCount)
	assert.True(t, s.BaseShare.IsZero())
	assert.True(t, s.ScoutShare.IsZero())
	// Nothing persisted, so the whole pool reconciles to the corporation.
	assert.True(t, s.FinalCorpShare.Equal(dec("5000.00")))
}
