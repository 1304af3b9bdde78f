// Package payout implements the payout allocation engine: weighted,
// rounding-exact, deduplicating distribution of a loot pool among a
// fleet roster.
package payout

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/isk"
)

var (
	hundred  = decimal.NewFromInt(100)
	oneShare = decimal.RequireFromString("1.00")
)

// Config carries every knob the calculator reads. It is passed in
// explicitly; the engine never consults ambient configuration
// mid-calculation.
type Config struct {
	// ScoutBonusPct is the scout bonus in percent (>= 0).
	ScoutBonusPct decimal.Decimal

	// MinimumPerParticipant is the all-or-nothing gate: if the base
	// share falls below it, no payouts are made and the whole pool
	// goes to the corporation.
	MinimumPerParticipant decimal.Decimal

	// MinimumPayout is the per-person gate: an individual share below
	// it is skipped (not redistributed; it flows to the corporation
	// via the remainder).
	MinimumPayout decimal.Decimal
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.ScoutBonusPct.IsNegative() {
		return fmt.Errorf("scout bonus percentage must be >= 0, got %s", c.ScoutBonusPct)
	}
	if c.MinimumPerParticipant.IsNegative() {
		return fmt.Errorf("minimum per participant must be >= 0, got %s", c.MinimumPerParticipant)
	}
	if c.MinimumPayout.IsNegative() {
		return fmt.Errorf("minimum payout must be >= 0, got %s", c.MinimumPayout)
	}
	return nil
}

// Share is one payable group's computed entitlement.
type Share struct {
	MainCharacterID   int64
	MainCharacterName string

	// Amount is the payable amount: BaseShare plus ScoutBonus.
	Amount decimal.Decimal

	// BaseShare is what one regular (1.00) share is worth.
	BaseShare decimal.Decimal

	// ScoutBonus is the extra over BaseShare; zero for regulars.
	ScoutBonus decimal.Decimal

	// SharePct is Amount as a percentage of the pool's total value.
	SharePct decimal.Decimal

	IsScout bool

	// AltCharacterIDs are the characters collapsed into this share.
	AltCharacterIDs []int64
}

// Result is a complete distribution for one pool.
type Result struct {
	// Shares are the per-player entitlements, ordered by main
	// character ID for determinism. Empty on degenerate input.
	Shares []Share

	// CorpShare is the corporation's cut before the remainder sweep.
	CorpShare decimal.Decimal

	// FinalCorpShare is CorpShare plus everything not distributed.
	// Total value is conserved exactly:
	// FinalCorpShare + sum(Shares) == pool total.
	FinalCorpShare decimal.Decimal

	// ParticipantPool is what remained after the corporation's cut.
	ParticipantPool decimal.Decimal

	// BaseShare and ScoutShare are the per-person amounts for a
	// regular and a scout; ScoutBonus is their difference.
	BaseShare  decimal.Decimal
	ScoutShare decimal.Decimal
	ScoutBonus decimal.Decimal

	// TotalDistributed is the sum of all share amounts actually paid.
	TotalDistributed decimal.Decimal

	EligibleCount int
	ScoutCount    int
	RegularCount  int
}

// empty returns the degenerate result: nothing distributed, the whole
// pool to the corporation.
func empty(total decimal.Decimal) Result {
	return Result{
		FinalCorpShare:   total,
		TotalDistributed: decimal.Zero,
	}
}

// Calculate distributes total among groups under corpSharePct and cfg.
//
// The corporation's cut and every per-person share are floored to
// 2 digits, never rounded up, so the distributed sum can never exceed
// the participant pool; whatever flooring and skipping leave behind is
// swept into the corporation's final share. Degenerate input (zero
// value, no eligible groups, base share under the minimum) is not an
// error: it yields an empty distribution with the whole pool going to
// the corporation.
func Calculate(total decimal.Decimal, corpSharePct decimal.Decimal, cfg Config, groups map[int64]*Group) Result {
	if total.Sign() <= 0 {
		slog.Warn("pool has zero or negative value, nothing to distribute", "total", total)
		return empty(total)
	}

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

	if eligible == 0 {
		slog.Warn("no eligible participants, whole pool goes to corporation", "total", isk.Format(total))
		return empty(total)
	}

	corpShare := isk.Floor2(total.Mul(corpSharePct).Div(hundred))
	participantPool := total.Sub(corpShare)

	scoutWeight := oneShare.Add(cfg.ScoutBonusPct.Div(hundred))
	totalShares := scoutWeight.Mul(decimal.NewFromInt(int64(scouts))).
		Add(oneShare.Mul(decimal.NewFromInt(int64(regulars))))

	valuePerShare := participantPool.Div(totalShares)
	baseShare := isk.Floor2(valuePerShare)

	if baseShare.LessThan(cfg.MinimumPerParticipant) {
		slog.Warn("base share below minimum per participant, whole pool goes to corporation",
			"base_share", isk.Format(baseShare),
			"minimum", isk.Format(cfg.MinimumPerParticipant),
			"total", isk.Format(total),
		)
		return empty(total)
	}

	scoutShare := isk.Floor2(valuePerShare.Mul(scoutWeight))
	scoutBonus := scoutShare.Sub(baseShare)

	shares := make([]Share, 0, eligible)
	totalDistributed := decimal.Zero

	for _, id := range sortedGroupIDs(groups) {
		g := groups[id]
		if g.Excluded {
			slog.Info("skipping excluded player", "main_character", g.MainCharacterName)
			continue
		}

		amount := baseShare
		bonus := decimal.Zero
		if g.IsScout {
			amount = scoutShare
			bonus = scoutBonus
		}

		if amount.LessThan(cfg.MinimumPayout) {
			slog.Info("skipping payout below minimum",
				"main_character", g.MainCharacterName,
				"amount", isk.Format(amount),
				"minimum", isk.Format(cfg.MinimumPayout),
			)
			continue
		}

		shares = append(shares, Share{
			MainCharacterID:   g.MainCharacterID,
			MainCharacterName: g.MainCharacterName,
			Amount:            amount,
			BaseShare:         baseShare,
			ScoutBonus:        bonus,
			SharePct:          amount.Div(total).Mul(hundred).Round(2),
			IsScout:           g.IsScout,
			AltCharacterIDs:   g.AltCharacterIDs(),
		})
		totalDistributed = totalDistributed.Add(amount)
	}

	remainder := participantPool.Sub(totalDistributed)
	finalCorpShare := corpShare.Add(remainder)

	slog.Info("calculated payouts",
		"players", len(shares),
		"scouts", scouts,
		"base_share", isk.Format(baseShare),
		"scout_bonus", isk.Format(scoutBonus),
		"corp_share", isk.Format(finalCorpShare),
	)

	return Result{
		Shares:           shares,
		CorpShare:        corpShare,
		FinalCorpShare:   finalCorpShare,
		ParticipantPool:  participantPool,
		BaseShare:        baseShare,
		ScoutShare:       scoutShare,
		ScoutBonus:       scoutBonus,
		TotalDistributed: totalDistributed,
		EligibleCount:    eligible,
		ScoutCount:       scouts,
		RegularCount:     regulars,
	}
}
