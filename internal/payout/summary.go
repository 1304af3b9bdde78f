package payout

import (
	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/isk"
	"github.com/fleetpay/fleetpay/internal/models"
)

// Summary is the read-only projection of a pool's distribution, shown
// before (and after) payouts are materialized. It reuses the exact
// arithmetic of Calculate so a preview matches what materialization
// would produce.
type Summary struct {
	TotalLoot       decimal.Decimal
	CorpSharePct    decimal.Decimal
	CorpShare       decimal.Decimal
	ParticipantPool decimal.Decimal

	EligibleCount int
	ScoutCount    int
	RegularCount  int

	BaseShare     decimal.Decimal
	ScoutShare    decimal.Decimal
	ScoutBonusPct decimal.Decimal
	ScoutBonus    decimal.Decimal

	// TotalPayouts is the sum over persisted payouts (zero before
	// materialization). Remainder and FinalCorpShare reconcile the
	// persisted set against the pool:
	// TotalPayouts + FinalCorpShare == TotalLoot, always.
	TotalPayouts   decimal.Decimal
	Remainder      decimal.Decimal
	FinalCorpShare decimal.Decimal
}

// Summarize projects the distribution arithmetic for display. persisted
// may be nil when no payouts have been materialized yet.
func Summarize(total decimal.Decimal, corpSharePct decimal.Decimal, cfg Config, groups map[int64]*Group, persisted []models.Payout) Summary {
	corpShare := isk.Floor2(total.Mul(corpSharePct).Div(hundred))
	participantPool := total.Sub(corpShare)

	eligible := 0
	scouts := 0
	for _, g := range groups {
		if g.Excluded {
			continue
		}
		eligible++
		if g.IsScout {
			scouts++
		}
	}
	regulars := eligible - scouts

	baseShare := decimal.Zero
	scoutShare := decimal.Zero
	scoutBonus := decimal.Zero

	if eligible > 0 {
		scoutWeight := oneShare.Add(cfg.ScoutBonusPct.Div(hundred))
		totalShares := scoutWeight.Mul(decimal.NewFromInt(int64(scouts))).
			Add(oneShare.Mul(decimal.NewFromInt(int64(regulars))))

		valuePerShare := participantPool.Div(totalShares)
		baseShare = isk.Floor2(valuePerShare)
		scoutShare = isk.Floor2(valuePerShare.Mul(scoutWeight))
		scoutBonus = scoutShare.Sub(baseShare)
	}

	totalPayouts := decimal.Zero
	for _, p := range persisted {
		totalPayouts = totalPayouts.Add(p.Amount)
	}
	remainder := participantPool.Sub(totalPayouts)

	return Summary{
		TotalLoot:       total,
		CorpSharePct:    corpSharePct,
		CorpShare:       corpShare,
		ParticipantPool: participantPool,
		EligibleCount:   eligible,
		ScoutCount:      scouts,
		RegularCount:    regulars,
		BaseShare:       baseShare,
		ScoutShare:      scoutShare,
		ScoutBonusPct:   cfg.ScoutBonusPct,
		ScoutBonus:      scoutBonus,
		TotalPayouts:    totalPayouts,
		Remainder:       remainder,
		FinalCorpShare:  corpShare.Add(remainder),
	}
}
