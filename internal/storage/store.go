// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/fleetpay/fleetpay/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for fleetpay's storage operations.
// This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, etc.) without changing the service layer.
type Store interface {
	// CreateFleet persists a new fleet. ID and CreatedAt are assigned
	// by the store when unset.
	CreateFleet(ctx context.Context, fleet *models.Fleet) error

	// GetFleet retrieves a fleet by ID.
	GetFleet(ctx context.Context, fleetID string) (*models.Fleet, error)

	// UpdateFleetStatus moves a fleet to the given status.
	UpdateFleetStatus(ctx context.Context, fleetID string, status models.FleetStatus) error

	// AddParticipants inserts roster entries in bulk. Entries whose
	// (fleet, character) pair already exists are skipped, not updated.
	// Returns how many were added and how many skipped.
	AddParticipants(ctx context.Context, fleetID string, entries []models.FleetParticipant) (added, skipped int, err error)

	// ListParticipants returns a fleet's roster. With activeOnly set,
	// entries that have left the fleet are omitted.
	ListParticipants(ctx context.Context, fleetID string, activeOnly bool) ([]models.FleetParticipant, error)

	// SetParticipantFlags updates the role and exclusion flag, the only
	// mutable participant fields after a fleet completes.
	SetParticipantFlags(ctx context.Context, participantID string, role models.Role, excluded bool) error

	// SetParticipantLeft records when a participant left the fleet.
	SetParticipantLeft(ctx context.Context, participantID string, leftAt int64) error

	// CreatePool persists a new loot pool in draft status.
	CreatePool(ctx context.Context, pool *models.Pool) error

	// GetPool retrieves a pool by ID, items included.
	GetPool(ctx context.Context, poolID string) (*models.Pool, error)

	// UpdatePoolStatus moves a pool to the given status.
	UpdatePoolStatus(ctx context.Context, poolID string, status models.PoolStatus) error

	// ReplaceLootItems atomically replaces a pool's items and updates
	// its total value to the sum of item totals.
	ReplaceLootItems(ctx context.Context, poolID string, items []models.LootItem) error

	// ClearLootItems removes all items from a pool and zeroes its
	// total. Returns the number of items removed.
	ClearLootItems(ctx context.Context, poolID string) (int, error)

	// MarkPoolValued sets status valued and the valuation timestamp.
	MarkPoolValued(ctx context.Context, poolID string, valuedAt int64) error

	// ReplacePayouts atomically deletes any existing payouts for the
	// pool and inserts the given batch. All-or-nothing: a failure must
	// not leave a mixed old/new payout set. Returns count inserted.
	ReplacePayouts(ctx context.Context, poolID string, payouts []models.Payout) (int, error)

	// ListPayouts returns a pool's payouts, optionally filtered by
	// status, ordered by recipient ID.
	ListPayouts(ctx context.Context, poolID string, statuses ...models.PayoutStatus) ([]models.Payout, error)

	// MarkPayoutVerified flags a payout as paid and verified with the
	// matched wallet journal reference.
	MarkPayoutVerified(ctx context.Context, payoutID, transactionRef string, at int64) error

	// Close releases any resources held by the store.
	Close() error
}
