package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/models"
	"github.com/fleetpay/fleetpay/internal/storage"
)

// CreatePool persists a new loot pool in draft status.
func (s *SQLiteStore) CreatePool(ctx context.Context, pool *models.Pool) error {
	if pool.ID == "" {
		pool.ID = uuid.New().String()
	}
	if pool.CreatedAt == 0 {
		pool.CreatedAt = time.Now().Unix()
	}
	if pool.Status == "" {
		pool.Status = models.PoolStatusDraft
	}
	if pool.PricingMethod == "" {
		pool.PricingMethod = models.PricingJaniceBuy
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pools
		 (id, fleet_id, status, raw_loot_text, pricing_method, corp_share_pct, scout_bonus_pct, total_value, created_at, valued_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pool.ID, pool.FleetID, pool.Status, pool.RawLootText, pool.PricingMethod,
		pool.CorpSharePct.String(), pool.ScoutBonusPct.String(), pool.TotalValue.String(),
		pool.CreatedAt, pool.ValuedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pool: %w", err)
	}
	return nil
}

// GetPool retrieves a pool by ID, items included.
func (s *SQLiteStore) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	pool := &models.Pool{}
	var corpPct, scoutPct, total string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fleet_id, status, raw_loot_text, pricing_method, corp_share_pct, scout_bonus_pct, total_value, created_at, valued_at
		 FROM pools WHERE id = ?`,
		poolID,
	).Scan(&pool.ID, &pool.FleetID, &pool.Status, &pool.RawLootText, &pool.PricingMethod,
		&corpPct, &scoutPct, &total, &pool.CreatedAt, &pool.ValuedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pool %s: %w", poolID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	if pool.CorpSharePct, err = scanDecimal(corpPct); err != nil {
		return nil, err
	}
	if pool.ScoutBonusPct, err = scanDecimal(scoutPct); err != nil {
		return nil, err
	}
	if pool.TotalValue, err = scanDecimal(total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pool_id, type_id, name, quantity, unit_price, total_value, source, manual_override
		 FROM loot_items WHERE pool_id = ? ORDER BY name, id`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get loot items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LootItem
		var unitPrice, totalValue string
		if err := rows.Scan(&item.ID, &item.PoolID, &item.TypeID, &item.Name, &item.Quantity,
			&unitPrice, &totalValue, &item.Source, &item.ManualOverride); err != nil {
			return nil, fmt.Errorf("failed to scan loot item: %w", err)
		}
		if item.UnitPrice, err = scanDecimal(unitPrice); err != nil {
			return nil, err
		}
		if item.TotalValue, err = scanDecimal(totalValue); err != nil {
			return nil, err
		}
		pool.Items = append(pool.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loot items: %w", err)
	}
	return pool, nil
}

// UpdatePoolStatus moves a pool to the given status.
func (s *SQLiteStore) UpdatePoolStatus(ctx context.Context, poolID string, status models.PoolStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE pools SET status = ? WHERE id = ?",
		status, poolID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pool status: %w", err)
	}
	return requireRow(res, "pool", poolID)
}

// MarkPoolValued sets status valued and the valuation timestamp.
func (s *SQLiteStore) MarkPoolValued(ctx context.Context, poolID string, valuedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE pools SET status = ?, valued_at = ? WHERE id = ?",
		models.PoolStatusValued, valuedAt, poolID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark pool valued: %w", err)
	}
	return requireRow(res, "pool", poolID)
}

// ReplaceLootItems atomically replaces a pool's items and updates its
// total value to the sum of item totals.
func (s *SQLiteStore) ReplaceLootItems(ctx context.Context, poolID string, items []models.LootItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM loot_items WHERE pool_id = ?", poolID); err != nil {
		return fmt.Errorf("failed to delete loot items: %w", err)
	}

	total := decimal.Zero
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.PoolID = poolID
		if item.Source == "" {
			item.Source = models.PriceSourceJanice
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO loot_items
			 (id, pool_id, type_id, name, quantity, unit_price, total_value, source, manual_override)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.PoolID, item.TypeID, item.Name, item.Quantity,
			item.UnitPrice.String(), item.TotalValue.String(), item.Source, item.ManualOverride,
		)
		if err != nil {
			return fmt.Errorf("failed to insert loot item: %w", err)
		}
		total = total.Add(item.TotalValue)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE pools SET total_value = ? WHERE id = ?",
		total.String(), poolID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pool total: %w", err)
	}
	if err := requireRow(res, "pool", poolID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearLootItems removes all items from a pool and zeroes its total.
func (s *SQLiteStore) ClearLootItems(ctx context.Context, poolID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM loot_items WHERE pool_id = ?", poolID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete loot items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE pools SET total_value = '0' WHERE id = ?", poolID); err != nil {
		return 0, fmt.Errorf("failed to zero pool total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(n), nil
}
