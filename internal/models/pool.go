package models

import "github.com/shopspring/decimal"

// PoolStatus tracks a loot pool through valuation and payout.
//
// draft -> valuing -> valued -> approved -> paid
//
// "valuing" is the in-flight state while an asynchronous appraisal runs;
// a failed appraisal reverts the pool to draft.
type PoolStatus string

const (
	PoolStatusDraft    PoolStatus = "draft"
	PoolStatusValuing  PoolStatus = "valuing"
	PoolStatusValued   PoolStatus = "valued"
	PoolStatusApproved PoolStatus = "approved"
	PoolStatusPaid     PoolStatus = "paid"
)

// PricingMethod selects which market price an appraisal uses.
type PricingMethod string

const (
	PricingJaniceBuy  PricingMethod = "janice_buy"
	PricingJaniceSell PricingMethod = "janice_sell"
)

// PriceSource records where a loot item's price came from.
type PriceSource string

const (
	PriceSourceJanice PriceSource = "janice"
	PriceSourceManual PriceSource = "manual"
)

// Pool is a valued collection of loot awaiting distribution.
type Pool struct {
	// ID is the unique identifier for the pool (UUID format).
	ID string

	// FleetID is the fleet whose roster this pool pays out to.
	FleetID string

	Status PoolStatus

	// RawLootText is the loot paste submitted for appraisal.
	RawLootText string

	PricingMethod PricingMethod

	// CorpSharePct is the organizational cut in percent (0-100).
	CorpSharePct decimal.Decimal

	// ScoutBonusPct is the scout bonus in percent (>= 0).
	ScoutBonusPct decimal.Decimal

	// TotalValue is the summed value of all items, maintained by the
	// store whenever items are replaced.
	TotalValue decimal.Decimal

	// Items are the priced line entries, populated on read.
	Items []LootItem

	// CreatedAt and ValuedAt are Unix timestamps.
	CreatedAt int64
	ValuedAt  int64
}

// LootItem is one priced line entry in a pool.
type LootItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// PoolID is the pool this item belongs to.
	PoolID string

	// TypeID is the EVE item type, Name its display name.
	TypeID int64
	Name   string

	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal

	Source PriceSource

	// ManualOverride marks a price corrected by hand. Re-appraisal
	// clears all items, overrides included.
	ManualOverride bool
}
