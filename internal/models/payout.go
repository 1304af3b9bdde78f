package models

import "github.com/shopspring/decimal"

// PayoutStatus tracks one payout obligation.
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
	PayoutStatusFailed  PayoutStatus = "failed"
)

// PaymentMethod records how a payout was (or will be) transferred.
type PaymentMethod string

const (
	PaymentMethodManual      PaymentMethod = "manual"
	PaymentMethodContract    PaymentMethod = "contract"
	PaymentMethodDirectTrade PaymentMethod = "direct_trade"
)

// Payout is one human's computed entitlement from one pool.
//
// Payouts are created in a batch by materialization; the batch for a
// pool is atomically replaced whenever recalculation runs. At most one
// payout exists per (pool, recipient) pair.
type Payout struct {
	// ID is the unique identifier for the payout (UUID format).
	ID string

	// PoolID is the pool this payout was computed from.
	PoolID string

	// RecipientID and RecipientName identify the main character paid.
	RecipientID   int64
	RecipientName string

	// Amount is the payable amount, quantized to 2 digits, >= 0.
	Amount decimal.Decimal

	Status PayoutStatus
	Method PaymentMethod

	// IsScout marks a payout that includes the scout bonus.
	IsScout bool

	// Verified is set when the payment was matched against the FC's
	// wallet journal; TransactionRef holds the journal entry ID.
	Verified       bool
	VerifiedAt     int64
	PaidAt         int64
	TransactionRef string

	// CreatedAt is the Unix timestamp when the payout was materialized.
	CreatedAt int64
}
