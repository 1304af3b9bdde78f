package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetpay/fleetpay/internal/models"
)

// ReplacePayouts atomically deletes any existing payouts for the pool
// and inserts the given batch.
func (s *SQLiteStore) ReplacePayouts(ctx context.Context, poolID string, payouts []models.Payout) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payouts WHERE pool_id = ?", poolID); err != nil {
		return 0, fmt.Errorf("failed to delete payouts: %w", err)
	}

	now := time.Now().Unix()
	for i := range payouts {
		p := &payouts[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
		if p.Status == "" {
			p.Status = models.PayoutStatusPending
		}
		if p.Method == "" {
			p.Method = models.PaymentMethodManual
		}
		p.PoolID = poolID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO payouts
			 (id, pool_id, recipient_id, recipient_name, amount, status, method, is_scout,
			  verified, verified_at, paid_at, transaction_ref, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.PoolID, p.RecipientID, p.RecipientName, p.Amount.String(),
			p.Status, p.Method, p.IsScout,
			p.Verified, p.VerifiedAt, p.PaidAt, p.TransactionRef, p.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert payout for recipient %d: %w", p.RecipientID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(payouts), nil
}

// ListPayouts returns a pool's payouts, optionally filtered by status.
func (s *SQLiteStore) ListPayouts(ctx context.Context, poolID string, statuses ...models.PayoutStatus) ([]models.Payout, error) {
	query := `SELECT id, pool_id, recipient_id, recipient_name, amount, status, method, is_scout,
	          verified, verified_at, paid_at, transaction_ref, created_at
	          FROM payouts WHERE pool_id = ?`
	args := []any{poolID}
	if len(statuses) > 0 {
		query += " AND status IN (?" + strings.Repeat(", ?", len(statuses)-1) + ")"
		for _, st := range statuses {
			args = append(args, st)
		}
	}
	query += " ORDER BY recipient_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get payouts: %w", err)
	}
	defer rows.Close()

	var payouts []models.Payout
	for rows.Next() {
		var p models.Payout
		var amount string
		if err := rows.Scan(&p.ID, &p.PoolID, &p.RecipientID, &p.RecipientName, &amount,
			&p.Status, &p.Method, &p.IsScout,
			&p.Verified, &p.VerifiedAt, &p.PaidAt, &p.TransactionRef, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		if p.Amount, err = scanDecimal(amount); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payouts: %w", err)
	}
	return payouts, nil
}

// MarkPayoutVerified flags a payout as paid and verified with the
// matched wallet journal reference.
func (s *SQLiteStore) MarkPayoutVerified(ctx context.Context, payoutID, transactionRef string, at int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payouts SET status = ?, verified = 1, verified_at = ?, paid_at = ?, transaction_ref = ?
		 WHERE id = ?`,
		models.PayoutStatusPaid, at, at, transactionRef, payoutID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payout verified: %w", err)
	}
	return requireRow(res, "payout", payoutID)
}
