// Package wallet verifies payouts against the paying character's wallet
// journal. It is a collaborator of the payout core: the core hands over
// pending payouts and applies the verified flags this package reports.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/isk"
	"github.com/fleetpay/fleetpay/internal/metrics"
	"github.com/fleetpay/fleetpay/internal/models"
	"github.com/fleetpay/fleetpay/internal/storage"
)

// refTypePlayerDonation is the journal ref type of a direct ISK transfer.
const refTypePlayerDonation = "player_donation"

// JournalEntry is one wallet journal line.
type JournalEntry struct {
	ID            int64
	Date          time.Time
	RefType       string
	FirstPartyID  int64 // sender
	SecondPartyID int64 // recipient
	Amount        decimal.Decimal
	Description   string
}

// JournalSource supplies a character's wallet journal.
type JournalSource interface {
	WalletJournal(ctx context.Context, characterID int64) ([]JournalEntry, error)
}

// Result summarizes one verification pass.
type Result struct {
	Verified int
	Pending  int
	Errors   []string
}

// Verifier matches pending payouts against wallet journal entries.
type Verifier struct {
	store   storage.Store
	journal JournalSource
	clock   clockwork.Clock
	window  time.Duration
}

// NewVerifier creates a verifier searching the given time window back
// from now. clock may be nil for the real clock.
func NewVerifier(store storage.Store, journal JournalSource, window time.Duration, clock clockwork.Clock) *Verifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Verifier{store: store, journal: journal, clock: clock, window: window}
}

// Match finds the first journal entry that pays amount to recipientID:
// a player donation to that recipient for exactly that amount, no older
// than cutoff.
func Match(amount decimal.Decimal, recipientID int64, entries []JournalEntry, cutoff time.Time) *JournalEntry {
	for i := range entries {
		e := &entries[i]
		if e.Date.Before(cutoff) {
			continue
		}
		if e.RefType != refTypePlayerDonation || e.SecondPartyID != recipientID {
			continue
		}
		if e.Amount.Abs().Equal(amount) {
			return e
		}
	}
	return nil
}

// VerifyPayouts checks every pending payout of the pool against the
// FC's wallet journal, marking matches paid and verified. Upstream
// failures do not abort the pass: they land in Result.Errors with all
// unmatched payouts counted as pending.
func (v *Verifier) VerifyPayouts(ctx context.Context, poolID string, fcCharacterID int64) (*Result, error) {
	pending, err := v.store.ListPayouts(ctx, poolID, models.PayoutStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payouts: %w", err)
	}
	res := &Result{}
	if len(pending) == 0 {
		slog.Info("no pending payouts to verify", "pool_id", poolID)
		return res, nil
	}

	entries, err := v.journal.WalletJournal(ctx, fcCharacterID)
	if err != nil {
		res.Pending = len(pending)
		res.Errors = append(res.Errors, fmt.Sprintf("failed to fetch wallet journal: %v", err))
		return res, nil
	}
	if len(entries) == 0 {
		res.Pending = len(pending)
		res.Errors = append(res.Errors, "no wallet journal entries found")
		return res, nil
	}

	now := v.clock.Now()
	cutoff := now.Add(-v.window)

	for _, p := range pending {
		match := Match(p.Amount, p.RecipientID, entries, cutoff)
		if match == nil {
			res.Pending++
			metrics.VerificationResults.WithLabelValues("pending").Inc()
			slog.Warn("no journal match for payout",
				"payout_id", p.ID,
				"recipient", p.RecipientName,
				"amount", isk.Format(p.Amount),
			)
			continue
		}

		if err := v.store.MarkPayoutVerified(ctx, p.ID, fmt.Sprintf("%d", match.ID), now.Unix()); err != nil {
			res.Pending++
			res.Errors = append(res.Errors, fmt.Sprintf("failed to mark payout %s verified: %v", p.ID, err))
			continue
		}
		res.Verified++
		metrics.VerificationResults.WithLabelValues("verified").Inc()
		slog.Info("verified payout",
			"payout_id", p.ID,
			"recipient", p.RecipientName,
			"amount", isk.Format(p.Amount),
			"journal_entry", match.ID,
		)
	}

	slog.Info("payment verification complete",
		"pool_id", poolID,
		"verified", res.Verified,
		"pending", res.Pending,
	)
	return res, nil
}
