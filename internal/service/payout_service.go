// Package service orchestrates pool valuation and payout
// materialization over the storage, pricing and payout packages.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/identity"
	"github.com/fleetpay/fleetpay/internal/metrics"
	"github.com/fleetpay/fleetpay/internal/models"
	"github.com/fleetpay/fleetpay/internal/payout"
	"github.com/fleetpay/fleetpay/internal/pricing"
	"github.com/fleetpay/fleetpay/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// poolTransitions lists the allowed status moves. Appraisal owns the
// draft/valuing/valued hops; Advance handles the rest.
var poolTransitions = map[models.PoolStatus][]models.PoolStatus{
	models.PoolStatusValued:   {models.PoolStatusApproved},
	models.PoolStatusApproved: {models.PoolStatusPaid},
}

// PayoutService runs the pool lifecycle: appraisal, payout
// materialization and distribution summaries.
type PayoutService struct {
	store     storage.Store
	appraiser pricing.Appraiser
	resolver  identity.Resolver
	clock     clockwork.Clock
	cfg       payout.Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPayoutService creates a new PayoutService. clock may be nil for
// the real clock.
func NewPayoutService(store storage.Store, appraiser pricing.Appraiser, resolver identity.Resolver, cfg payout.Config, clock clockwork.Clock) *PayoutService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PayoutService{
		store:     store,
		appraiser: appraiser,
		resolver:  resolver,
		clock:     clock,
		cfg:       cfg,
		locks:     make(map[string]*sync.Mutex),
	}
}

// poolLock returns the mutex serializing writes for one pool. Locks
// are never removed; the map is bounded by the number of pools touched.
func (s *PayoutService) poolLock(poolID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[poolID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[poolID] = lock
	}
	return lock
}

// CreatePool opens a draft pool for a fleet with the loot paste to be
// appraised later.
func (s *PayoutService) CreatePool(ctx context.Context, fleetID, rawLootText string, corpSharePct, scoutBonusPct decimal.Decimal, method models.PricingMethod) (*models.Pool, error) {
	if _, err := s.store.GetFleet(ctx, fleetID); err != nil {
		return nil, fmt.Errorf("failed to get fleet: %w", err)
	}
	if corpSharePct.IsNegative() || corpSharePct.GreaterThan(hundred) {
		return nil, fmt.Errorf("corp share must be within 0-100, got %s", corpSharePct)
	}
	if scoutBonusPct.IsNegative() {
		return nil, fmt.Errorf("scout bonus must be >= 0, got %s", scoutBonusPct)
	}
	pool := &models.Pool{
		FleetID:       fleetID,
		RawLootText:   rawLootText,
		PricingMethod: method,
		CorpSharePct:  corpSharePct,
		ScoutBonusPct: scoutBonusPct,
	}
	if err := s.store.CreatePool(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	slog.Info("Pool created", "pool_id", pool.ID, "fleet_id", fleetID)
	return pool, nil
}

// Appraise values the pool's loot paste and stores the priced items.
// The pool sits in "valuing" while the appraisal runs and reverts to
// draft on failure so the paste can be retried.
func (s *PayoutService) Appraise(ctx context.Context, poolID string) error {
	lock := s.poolLock(poolID)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to get pool: %w", err)
	}
	switch pool.Status {
	case models.PoolStatusDraft, models.PoolStatusValued:
	default:
		return fmt.Errorf("pool %s is %s, cannot appraise", poolID, pool.Status)
	}

	if err := s.store.UpdatePoolStatus(ctx, poolID, models.PoolStatusValuing); err != nil {
		return fmt.Errorf("failed to set pool valuing: %w", err)
	}

	appraisal, err := s.appraiser.Appraise(ctx, pool.RawLootText)
	if err != nil {
		slog.Error("Appraisal failed", "pool_id", poolID, "kind", pricing.ErrKind(err).String(), "error", err)
		s.revertToDraft(ctx, poolID)
		return fmt.Errorf("appraisal failed: %w", err)
	}

	items := make([]models.LootItem, len(appraisal.Items))
	for i, it := range appraisal.Items {
		items[i] = models.LootItem{
			PoolID:     poolID,
			TypeID:     it.TypeID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalValue: it.TotalValue,
			Source:     models.PriceSourceJanice,
		}
	}
	if err := s.store.ReplaceLootItems(ctx, poolID, items); err != nil {
		s.revertToDraft(ctx, poolID)
		return fmt.Errorf("failed to store loot items: %w", err)
	}
	if err := s.store.MarkPoolValued(ctx, poolID, s.clock.Now().Unix()); err != nil {
		s.revertToDraft(ctx, poolID)
		return fmt.Errorf("failed to mark pool valued: %w", err)
	}
	slog.Info("Pool valued",
		"pool_id", poolID,
		"items", len(items),
		"total", appraisal.TotalValue.StringFixed(2),
	)
	return nil
}

// revertToDraft returns a pool stuck mid-appraisal to draft so the
// paste can be retried.
func (s *PayoutService) revertToDraft(ctx context.Context, poolID string) {
	if err := s.store.UpdatePoolStatus(ctx, poolID, models.PoolStatusDraft); err != nil {
		slog.Error("Failed to revert pool to draft", "pool_id", poolID, "error", err)
	}
}

// Reappraise discards the pool's priced items, manual overrides
// included, and runs a fresh appraisal.
func (s *PayoutService) Reappraise(ctx context.Context, poolID string) error {
	lock := s.poolLock(poolID)
	lock.Lock()
	removed, err := s.store.ClearLootItems(ctx, poolID)
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("failed to clear loot items: %w", err)
	}
	if err := s.store.UpdatePoolStatus(ctx, poolID, models.PoolStatusDraft); err != nil {
		lock.Unlock()
		return fmt.Errorf("failed to reset pool: %w", err)
	}
	lock.Unlock()

	slog.Info("Pool reset for re-appraisal", "pool_id", poolID, "items_removed", removed)
	return s.Appraise(ctx, poolID)
}

// Calculate previews the distribution for a pool's current roster and
// total. Nothing is persisted.
func (s *PayoutService) Calculate(ctx context.Context, poolID string) (*payout.Result, error) {
	pool, groups, err := s.loadDistribution(ctx, poolID)
	if err != nil {
		return nil, err
	}
	res := payout.Calculate(pool.TotalValue, pool.CorpSharePct, s.poolConfig(pool), groups)
	return &res, nil
}

// Materialize computes the distribution and atomically replaces the
// pool's payout batch with the result. Returns the number of payouts
// persisted; zero with no error means the pool had nothing to pay out.
func (s *PayoutService) Materialize(ctx context.Context, poolID string) (int, error) {
	lock := s.poolLock(poolID)
	lock.Lock()
	defer lock.Unlock()

	start := s.clock.Now()
	n, err := s.materialize(ctx, poolID)
	metrics.PayoutRunDuration.Observe(s.clock.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.PayoutRuns.WithLabelValues("error").Inc()
	case n == 0:
		metrics.PayoutRuns.WithLabelValues("empty").Inc()
	default:
		metrics.PayoutRuns.WithLabelValues("ok").Inc()
		metrics.PayoutsCreated.Add(float64(n))
	}
	return n, err
}

func (s *PayoutService) materialize(ctx context.Context, poolID string) (int, error) {
	pool, groups, err := s.loadDistribution(ctx, poolID)
	if err != nil {
		return 0, err
	}
	switch pool.Status {
	case models.PoolStatusValued, models.PoolStatusApproved:
	default:
		return 0, fmt.Errorf("pool %s is %s, must be valued before payouts", poolID, pool.Status)
	}

	res := payout.Calculate(pool.TotalValue, pool.CorpSharePct, s.poolConfig(pool), groups)
	now := s.clock.Now().Unix()
	payouts := make([]models.Payout, len(res.Shares))
	for i, share := range res.Shares {
		payouts[i] = models.Payout{
			PoolID:        poolID,
			RecipientID:   share.MainCharacterID,
			RecipientName: share.MainCharacterName,
			Amount:        share.Amount,
			Status:        models.PayoutStatusPending,
			Method:        models.PaymentMethodManual,
			IsScout:       share.IsScout,
			CreatedAt:     now,
		}
	}

	// A recalculation that yields nothing still replaces (clears) any
	// stale batch from an earlier run.
	n, err := s.store.ReplacePayouts(ctx, poolID, payouts)
	if err != nil {
		return 0, fmt.Errorf("failed to replace payouts: %w", err)
	}
	slog.Info("Payouts materialized",
		"pool_id", poolID,
		"payouts", n,
		"distributed", res.TotalDistributed.StringFixed(2),
		"corp_share", res.FinalCorpShare.StringFixed(2),
	)
	return n, nil
}

// Summarize reconciles the pool's arithmetic against whatever payout
// batch is persisted.
func (s *PayoutService) Summarize(ctx context.Context, poolID string) (*payout.Summary, error) {
	pool, groups, err := s.loadDistribution(ctx, poolID)
	if err != nil {
		return nil, err
	}
	persisted, err := s.store.ListPayouts(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	summary := payout.Summarize(pool.TotalValue, pool.CorpSharePct, s.poolConfig(pool), groups, persisted)
	return &summary, nil
}

// Advance moves a pool along valued -> approved -> paid.
func (s *PayoutService) Advance(ctx context.Context, poolID string, to models.PoolStatus) error {
	lock := s.poolLock(poolID)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to get pool: %w", err)
	}
	allowed := false
	for _, next := range poolTransitions[pool.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("cannot move pool %s from %s to %s", poolID, pool.Status, to)
	}
	if err := s.store.UpdatePoolStatus(ctx, poolID, to); err != nil {
		return fmt.Errorf("failed to update pool status: %w", err)
	}
	slog.Info("Pool status changed", "pool_id", poolID, "from", pool.Status, "to", to)
	return nil
}

// loadDistribution fetches the pool and its fleet's deduplicated
// active roster.
func (s *PayoutService) loadDistribution(ctx context.Context, poolID string) (*models.Pool, map[int64]*payout.Group, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pool: %w", err)
	}
	roster, err := s.store.ListParticipants(ctx, pool.FleetID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list participants: %w", err)
	}
	groups := payout.Deduplicate(ctx, roster, s.resolver, nil)
	return pool, groups, nil
}

// poolConfig applies the pool's own bonus percentage over the
// service-wide gates.
func (s *PayoutService) poolConfig(pool *models.Pool) payout.Config {
	cfg := s.cfg
	cfg.ScoutBonusPct = pool.ScoutBonusPct
	return cfg
}
